package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/ragchat/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	temperature float64
	topP        float64
	maxTokens   int
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return newGeneratorWithModel(client, config), nil
}

func newGeneratorWithModel(client llms.Model, config *ai.Config) *Generator {
	return &Generator{
		client:      client,
		temperature: config.Temperature,
		topP:        config.TopP,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-generator"),
	}
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends the prompt as a single user message.
func (g *Generator) Generate(ctx context.Context, prompt string) ai.Generation {
	g.logger.Debug("generating answer", "prompt_length", len(prompt))

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(g.temperature),
		llms.WithTopP(g.topP),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return ai.Failed(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		g.logger.Warn("model returned no choices")
		return ai.Failed(ai.ErrEmptyGeneration)
	}

	gen := ai.Generated(resp.Choices[0].Content)
	if !gen.OK() {
		g.logger.Warn("model returned empty content")
	}
	return gen
}
