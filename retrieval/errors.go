package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when no passage index is provided.
	ErrIndexRequired = errors.New("passage index is required")
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")
	// ErrInvalidCandidateCount is returned for a non-positive per-signal count.
	ErrInvalidCandidateCount = errors.New("candidate count must be positive")
	// ErrLexicalSearch wraps failures of the lexical query.
	ErrLexicalSearch = errors.New("lexical search failed")
	// ErrSemanticSearch wraps failures of the embedding or semantic query.
	ErrSemanticSearch = errors.New("semantic search failed")
)
