// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `toml:"embedding_host"`

	// GenerationHost is the base URL for the text-generation service API.
	GenerationHost string `toml:"generation_host"`

	// EmbeddingModel is the model identifier to use for query embeddings.
	// It must match the model the index was embedded with.
	EmbeddingModel string `toml:"embedding_model"`

	// GenerationModel is the model identifier that writes answers.
	// Example: "qwen2.5:7b", "gpt-4o-mini"
	GenerationModel string `toml:"generation_model"`

	// APIKey authenticates against hosted services.
	// Local OpenAI-compatible servers accept any value.
	APIKey string `toml:"api_key"`

	// Temperature, TopP and MaxTokens are fixed for every request.
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	MaxTokens   int     `toml:"max_tokens"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithHost sets both embedding and generation hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GenerationHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithAPIKey sets the API key sent to the services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithSampling sets the inference parameters used for every answer.
func WithSampling(temperature, topP float64, maxTokens int) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
		c.TopP = topP
		c.MaxTokens = maxTokens
	}
}

// DefaultConfig points both services at a local Ollama.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:   defaultHost,
		GenerationHost:  defaultHost,
		EmbeddingModel:  "embeddinggemma",
		GenerationModel: "qwen2.5:7b",
		APIKey:          "none",
		Temperature:     1.0,
		TopP:            0.999,
		MaxTokens:       4096,
	}
}

// NewConfig applies opts over DefaultConfig.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize appends the /v1 path OpenAI-compatible servers expect and fills
// in a placeholder API key, since local servers ignore it but the client requires one.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.GenerationHost = normalizeHost(c.GenerationHost)
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// ErrInvalidAIConfig wraps every problem Validate finds.
var ErrInvalidAIConfig = errors.New("ai config")

// Validate normalizes c and reports every missing or out-of-range field at once.
func (c *Config) Validate() error {
	c.Normalize()

	var problems []error
	check := func(ok bool, field, rule string) {
		if !ok {
			problems = append(problems, fmt.Errorf("%w: %s %s", ErrInvalidAIConfig, field, rule))
		}
	}
	check(c.EmbeddingHost != "", "EmbeddingHost", "is required")
	check(c.GenerationHost != "", "GenerationHost", "is required")
	check(c.EmbeddingModel != "", "EmbeddingModel", "is required")
	check(c.GenerationModel != "", "GenerationModel", "is required")
	check(c.Temperature >= 0 && c.Temperature <= 2, "Temperature", "must be between 0 and 2")
	check(c.TopP > 0 && c.TopP <= 1, "TopP", "must be in (0, 1]")
	check(c.MaxTokens >= 1, "MaxTokens", "must be positive")
	return errors.Join(problems...)
}
