package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 1.0, cfg.Temperature)
	assert.Equal(t, 0.999, cfg.TopP)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GenerationHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGenerationHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GenerationHost)
	})

	t.Run("with models, key and sampling", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithGenerationModel("gpt-4o-mini"),
			WithAPIKey("sk-test"),
			WithSampling(0.2, 0.9, 1024),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, 0.9, cfg.TopP)
		assert.Equal(t, 1024, cfg.MaxTokens)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, GenerationHost: tt.host}

			cfg.Normalize()

			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, tt.expected, cfg.GenerationHost)
			assert.Equal(t, "none", cfg.APIKey)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config normalizes", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, wantMsg: "EmbeddingHost"},
		{name: "missing generation host", mutate: func(c *Config) { c.GenerationHost = "" }, wantMsg: "GenerationHost"},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, wantMsg: "EmbeddingModel"},
		{name: "missing generation model", mutate: func(c *Config) { c.GenerationModel = "" }, wantMsg: "GenerationModel"},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 3 }, wantMsg: "Temperature"},
		{name: "top p zero", mutate: func(c *Config) { c.TopP = 0 }, wantMsg: "TopP"},
		{name: "max tokens zero", mutate: func(c *Config) { c.MaxTokens = 0 }, wantMsg: "MaxTokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidAIConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfigValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()

	require.ErrorIs(t, err, ErrInvalidAIConfig)
	for _, field := range []string{"EmbeddingHost", "GenerationModel", "TopP", "MaxTokens"} {
		assert.Contains(t, err.Error(), field)
	}
}
