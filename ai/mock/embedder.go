package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
)

// DefaultDimensions is the length of vectors produced by MockEmbedder.
const DefaultDimensions = 384

// MockEmbedder is a test double for ai.Embedder.
// Identical text always embeds to the identical unit vector, so a passage
// embedded at seeding time is the exact nearest neighbour of the same text
// as a query. Safe for concurrent use as long as the Func fields are set
// before the first call.
type MockEmbedder struct {
	// EmbedTextFunc replaces the default behavior of EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc replaces the default behavior of EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	calls atomic.Int64
}

// NewMockEmbedder creates a mock embedder with deterministic vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText embeds one text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return vectorFor(text), nil
}

// EmbedTexts embeds each text in order.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = vectorFor(text)
	}
	return vectors, nil
}

// CallCount returns how many times either method was called.
func (m *MockEmbedder) CallCount() int {
	return int(m.calls.Load())
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.calls.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// vectorFor seeds a linear congruential generator with the FNV hash of text
// and scales the result to unit length.
func vectorFor(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, DefaultDimensions)
	var sumSquares float64
	for i := range vector {
		seed = seed*1664525 + 1013904223
		v := float32(seed%1000) / 1000.0
		vector[i] = v
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}
	norm := float32(1 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}
