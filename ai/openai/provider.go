package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/ragchat/ai"
)

// Provider pairs the query embedder with the answer generator so both
// talk to the hosts and models named in one ai.Config.
type Provider struct {
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider validates config and builds both clients.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	generator, err := newGenerator(config)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Info("ai provider ready",
		"embedding_host", config.EmbeddingHost,
		"embedding_model", config.EmbeddingModel,
		"generation_host", config.GenerationHost,
		"generation_model", config.GenerationModel)

	return &Provider{embedder: embedder, generator: generator, logger: logger}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close is a no-op; the HTTP clients hold no resources that need releasing.
func (p *Provider) Close() error {
	return nil
}
