package ai

import "context"

// Embedder maps text to vectors in the same space the passage index was built in.
// Implementations are safe for concurrent use; retrieval embeds the query
// on a worker goroutine.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts returns one vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator answers a fully assembled prompt with sampling parameters fixed
// at construction. It reports failures inside the Generation instead of
// returning an error.
type Generator interface {
	Generate(ctx context.Context, prompt string) Generation
}

// AIProvider owns an Embedder and a Generator built from one configuration.
type AIProvider interface {
	Embedder() Embedder
	Generator() Generator
	Close() error
}
