package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/ragchat/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerator_Generate(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "The levy passed <a1b2c3d4>."}},
	}}
	gen := newGeneratorWithModel(model, ai.DefaultConfig())

	result := gen.Generate(context.Background(), "User: did the levy pass?")

	require.True(t, result.OK())
	assert.Equal(t, "The levy passed <a1b2c3d4>.", result.Text())

	require.Len(t, model.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
	assert.Equal(t, 1.0, model.options.Temperature)
	assert.Equal(t, 0.999, model.options.TopP)
	assert.Equal(t, 4096, model.options.MaxTokens)
}

func TestGenerator_Failures(t *testing.T) {
	upstream := errors.New("503 service unavailable")

	tests := []struct {
		name    string
		model   *fakeModel
		wantErr error
	}{
		{name: "upstream error", model: &fakeModel{err: upstream}, wantErr: upstream},
		{name: "no choices", model: &fakeModel{resp: &llms.ContentResponse{}}, wantErr: ai.ErrEmptyGeneration},
		{name: "nil response", model: &fakeModel{}, wantErr: ai.ErrEmptyGeneration},
		{name: "blank content", model: &fakeModel{resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "   "}},
		}}, wantErr: ai.ErrEmptyGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGeneratorWithModel(tt.model, ai.DefaultConfig())

			result := gen.Generate(context.Background(), "prompt")

			assert.False(t, result.OK())
			assert.ErrorIs(t, result.Err(), tt.wantErr)
			assert.Empty(t, result.Text())
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := ai.DefaultConfig()
	cfg.GenerationModel = ""

	_, err := NewProvider(cfg)
	assert.ErrorIs(t, err, ai.ErrInvalidAIConfig)
}

func TestNewProvider(t *testing.T) {
	// Client construction does not dial, so no server is needed.
	p, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithAPIKey("test")))
	require.NoError(t, err)
	assert.NotNil(t, p.Embedder())
	assert.NotNil(t, p.Generator())
	assert.NoError(t, p.Close())
}
