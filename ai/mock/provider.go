package mock

import "github.com/poiesic/ragchat/ai"

// MockProvider hands out one MockEmbedder and one MockGenerator.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockGenerator
}

// NewMockProvider creates a provider backed by fresh mocks.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockGenerator())
}

// NewMockProviderWithServices creates a provider around mocks the test already holds.
func NewMockProviderWithServices(embedder *MockEmbedder, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{embedder: embedder, generator: generator}
}

func (p *MockProvider) Embedder() ai.Embedder   { return p.embedder }
func (p *MockProvider) Generator() ai.Generator { return p.generator }
func (p *MockProvider) Close() error            { return nil }

// GetMockEmbedder returns the concrete embedder.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the concrete generator.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}
