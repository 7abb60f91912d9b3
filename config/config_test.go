package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/ragchat/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Retrieval.CandidateCount)
	assert.Equal(t, 20, cfg.Retrieval.PoolSize)
	assert.Equal(t, 5, cfg.Retrieval.MaxDocs)
	assert.Equal(t, 5, cfg.Retrieval.MinDocs)
	assert.Equal(t, 5, cfg.Retrieval.GapWindow)
	assert.Equal(t, "interpolation", cfg.Retrieval.Fusion)
	assert.Equal(t, 0.5, cfg.Retrieval.FusionWeight)
	assert.Equal(t, 60, cfg.Retrieval.RRFK)
	assert.Equal(t, 5, cfg.Conversation.HistoryPairs)
	assert.Equal(t, 4, cfg.Conversation.HistoryTurns)
	assert.Equal(t, 100000, cfg.Conversation.MaxHistoryCharacters)
	assert.Equal(t, IndexBadger, cfg.Storage.IndexBackend)
	assert.Equal(t, time.Hour, cfg.Links.PresignExpiry.Duration)
	assert.Equal(t, 1.0, cfg.AI.Temperature)
	assert.Equal(t, 0.999, cfg.AI.TopP)
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
}

func TestNew_Options(t *testing.T) {
	cfg, err := New(
		WithFusion(ranking.ModeRRF, 0.3),
		WithSelection(8, 2, 6),
		WithHistory(3, 2, 500),
		WithPostgresIndex("postgres://localhost/ragchat"),
		WithS3Region("eu-west-1"),
		WithServerAddr(":9000"),
	)
	require.NoError(t, err)
	assert.Equal(t, "rrf", cfg.Retrieval.Fusion)
	assert.Equal(t, 8, cfg.Retrieval.MaxDocs)
	assert.Equal(t, 2, cfg.Retrieval.MinDocs)
	assert.Equal(t, Conversation{HistoryPairs: 3, HistoryTurns: 2, MaxHistoryCharacters: 500}, cfg.Conversation)
	assert.Equal(t, IndexPostgres, cfg.Storage.IndexBackend)
	assert.Equal(t, "eu-west-1", cfg.Links.S3Region)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero candidates", func(c *Config) { c.Retrieval.CandidateCount = 0 }},
		{"zero pool", func(c *Config) { c.Retrieval.PoolSize = 0 }},
		{"zero max docs", func(c *Config) { c.Retrieval.MaxDocs = 0 }},
		{"min above max", func(c *Config) { c.Retrieval.MinDocs = 6 }},
		{"zero min", func(c *Config) { c.Retrieval.MinDocs = 0 }},
		{"zero window", func(c *Config) { c.Retrieval.GapWindow = 0 }},
		{"unknown fusion", func(c *Config) { c.Retrieval.Fusion = "borda" }},
		{"weight above one", func(c *Config) { c.Retrieval.FusionWeight = 1.5 }},
		{"zero rrf k", func(c *Config) { c.Retrieval.RRFK = 0 }},
		{"negative history", func(c *Config) { c.Conversation.HistoryTurns = -1 }},
		{"unknown backend", func(c *Config) { c.Storage.IndexBackend = "sqlite" }},
		{"postgres without url", func(c *Config) { c.Storage.IndexBackend = IndexPostgres }},
		{"zero expiry", func(c *Config) { c.Links.PresignExpiry = Duration{} }},
		{"bad top p", func(c *Config) { c.AI.TopP = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
prompt_template = "Docs: {documents} Cites: {citations}"

[ai]
generation_model = "gpt-4o-mini"
generation_host = "https://api.example.com"

[retrieval]
fusion = "rrf"
min_docs = 1

[conversation]
max_history_characters = 0

[links]
s3_region = "us-east-1"
presign_expiry = "30m"
`))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.AI.GenerationModel)
	assert.Equal(t, "https://api.example.com/v1", cfg.AI.GenerationHost)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.Equal(t, "rrf", cfg.Retrieval.Fusion)
	assert.Equal(t, 1, cfg.Retrieval.MinDocs)
	assert.Equal(t, 5, cfg.Retrieval.MaxDocs)
	assert.Equal(t, 0, cfg.Conversation.MaxHistoryCharacters)
	assert.Equal(t, 4, cfg.Conversation.HistoryTurns)
	assert.Equal(t, 30*time.Minute, cfg.Links.PresignExpiry.Duration)
	assert.Equal(t, "Docs: {documents} Cites: {citations}", cfg.PromptTemplate)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`[retrieval`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]byte("[links]\npresign_expiry = \"soon\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]byte("[retrieval]\nmax_docs = 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvGenerationModel: "llama3",
		EnvAPIKey:          "secret",
		EnvPostgresURL:     "postgres://db/ragchat",
		EnvEmbeddingHost:   "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "llama3", cfg.AI.GenerationModel)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, IndexPostgres, cfg.Storage.IndexBackend)
	assert.Equal(t, "postgres://db/ragchat", cfg.Storage.PostgresURL)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost)
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}
