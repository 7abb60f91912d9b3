package mock

import (
	"context"

	"github.com/poiesic/ragchat/ai"
)

// DefaultAnswer is what MockGenerator returns when no GenerateFunc is set.
const DefaultAnswer = "mock answer"

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string) ai.Generation

	callCount  int
	lastPrompt string
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the prompt and returns GenerateFunc's result or DefaultAnswer.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) ai.Generation {
	m.callCount++
	m.lastPrompt = prompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return ai.Generated(DefaultAnswer)
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recent prompt passed to Generate.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}

// Reset clears the call count, last prompt and custom behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.GenerateFunc = nil
}
