package storage

import (
	"context"

	"github.com/poiesic/ragchat/core"
)

// ConversationRepository stores the turns of each session keyed by (session, timestamp).
// Implementations must be thread-safe and support concurrent access.
type ConversationRepository interface {
	// AppendMessage stores a message and returns it with its timestamp populated.
	// A zero Timestamp is assigned from the clock. Timestamps are strictly
	// increasing per session; a collision is bumped forward by one millisecond.
	AppendMessage(ctx context.Context, msg *core.ConversationMessage) (*core.ConversationMessage, error)

	// RecentMessages returns up to limit messages of a session, newest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]*core.ConversationMessage, error)

	// GetMessage retrieves a single message.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, sessionID string, timestamp int64) (*core.ConversationMessage, error)

	// UpdateFeedback records feedback on a stored message.
	// Returns ErrNotFound if the message doesn't exist.
	UpdateFeedback(ctx context.Context, sessionID string, timestamp int64, feedback core.Feedback) (*core.ConversationMessage, error)

	// Close releases resources held by the repository.
	Close() error
}

// PassageIndex is the pre-populated index retrieval queries.
type PassageIndex interface {
	// LexicalSearch returns up to k passages ranked by keyword relevance, best first.
	LexicalSearch(ctx context.Context, query string, k int) ([]core.Candidate, error)

	// SemanticSearch returns up to k passages nearest to the embedding, best first.
	SemanticSearch(ctx context.Context, embedding []float32, k int) ([]core.Candidate, error)

	// Close releases resources held by the index.
	Close() error
}

// Passage is one indexed passage with its embedding.
type Passage struct {
	ID       string
	Text     string
	Type     core.DocType
	Metadata core.Metadata
	Vector   []float32
}

// Candidate converts the passage to a Candidate carrying the given score.
func (p *Passage) Candidate(score float64) core.Candidate {
	return core.Candidate{
		ID:       p.ID,
		Score:    score,
		Passage:  p.Text,
		Type:     p.Type,
		Metadata: p.Metadata,
	}
}
