package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/ragchat/ai"
	"github.com/poiesic/ragchat/conversation"
	"github.com/poiesic/ragchat/prompt"
	"github.com/poiesic/ragchat/ranking"
	"github.com/poiesic/ragchat/retrieval"
	"github.com/poiesic/ragchat/storage/s3link"
)

// Index backends.
const (
	IndexBadger   = "badger"
	IndexPostgres = "postgres"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration written as a string such as "45m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Retrieval controls how many candidates are fetched, fused and kept.
type Retrieval struct {
	CandidateCount int     `toml:"candidate_count"` // Per signal
	PoolSize       int     `toml:"pool_size"`       // Fused pool cap
	Workers        int     `toml:"workers"`         // Concurrent index queries
	MaxDocs        int     `toml:"max_docs"`
	MinDocs        int     `toml:"min_docs"`
	GapWindow      int     `toml:"gap_window"`
	Fusion         string  `toml:"fusion"` // "interpolation" or "rrf"
	FusionWeight   float64 `toml:"fusion_weight"`
	RRFK           int     `toml:"rrf_k"`
}

// Conversation bounds how much history is read and shown.
type Conversation struct {
	HistoryPairs         int `toml:"history_pairs"`
	HistoryTurns         int `toml:"history_turns"`
	MaxHistoryCharacters int `toml:"max_history_characters"`
}

// Storage selects where conversations and passages live.
type Storage struct {
	Path         string `toml:"path"` // Badger directory; empty keeps everything in memory
	IndexBackend string `toml:"index_backend"`
	PostgresURL  string `toml:"postgres_url"`
	PassageTable string `toml:"passage_table"`
}

// Links configures presigning of s3:// source links.
type Links struct {
	S3Region      string   `toml:"s3_region"` // Empty disables presigning
	PresignExpiry Duration `toml:"presign_expiry"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr        string `toml:"addr"`
	AllowOrigin string `toml:"allow_origin"`
}

// Config is the complete deployment configuration.
type Config struct {
	AI             ai.Config    `toml:"ai"`
	Retrieval      Retrieval    `toml:"retrieval"`
	Conversation   Conversation `toml:"conversation"`
	PromptTemplate string       `toml:"prompt_template"`
	Storage        Storage      `toml:"storage"`
	Links          Links        `toml:"links"`
	Server         Server       `toml:"server"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithAI replaces the model settings.
func WithAI(cfg ai.Config) Option {
	return func(c *Config) {
		c.AI = cfg
	}
}

// WithStoragePath sets the badger directory.
func WithStoragePath(path string) Option {
	return func(c *Config) {
		c.Storage.Path = path
	}
}

// WithPostgresIndex reads passages from Postgres instead of badger.
func WithPostgresIndex(url string) Option {
	return func(c *Config) {
		c.Storage.IndexBackend = IndexPostgres
		c.Storage.PostgresURL = url
	}
}

// WithFusion selects the fusion mode and interpolation weight.
func WithFusion(mode ranking.Mode, weight float64) Option {
	return func(c *Config) {
		c.Retrieval.Fusion = string(mode)
		c.Retrieval.FusionWeight = weight
	}
}

// WithSelection sets the document cap and the score-gap policy.
func WithSelection(maxDocs, minDocs, gapWindow int) Option {
	return func(c *Config) {
		c.Retrieval.MaxDocs = maxDocs
		c.Retrieval.MinDocs = minDocs
		c.Retrieval.GapWindow = gapWindow
	}
}

// WithHistory sets the history bounds.
func WithHistory(pairs, turns, maxCharacters int) Option {
	return func(c *Config) {
		c.Conversation = Conversation{
			HistoryPairs:         pairs,
			HistoryTurns:         turns,
			MaxHistoryCharacters: maxCharacters,
		}
	}
}

// WithPromptTemplate sets the answer prompt template.
func WithPromptTemplate(template string) Option {
	return func(c *Config) {
		c.PromptTemplate = template
	}
}

// WithS3Region enables presigning of s3:// links.
func WithS3Region(region string) Option {
	return func(c *Config) {
		c.Links.S3Region = region
	}
}

// WithServerAddr sets the HTTP listen address.
func WithServerAddr(addr string) Option {
	return func(c *Config) {
		c.Server.Addr = addr
	}
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		AI: *ai.DefaultConfig(),
		Retrieval: Retrieval{
			CandidateCount: retrieval.DefaultCandidateCount,
			PoolSize:       ranking.DefaultPoolSize,
			Workers:        retrieval.DefaultPoolSize,
			MaxDocs:        ranking.DefaultMaxDocs,
			MinDocs:        ranking.DefaultMaxDocs,
			GapWindow:      ranking.DefaultMaxDocs,
			Fusion:         string(ranking.ModeInterpolation),
			FusionWeight:   ranking.DefaultWeight,
			RRFK:           ranking.DefaultRRFK,
		},
		Conversation: Conversation{
			HistoryPairs:         conversation.DefaultHistoryPairs,
			HistoryTurns:         prompt.DefaultHistoryTurns,
			MaxHistoryCharacters: prompt.DefaultMaxHistoryCharacters,
		},
		PromptTemplate: prompt.DefaultTemplate,
		Storage: Storage{
			Path:         "ragchat-data",
			IndexBackend: IndexBadger,
			PassageTable: "passages",
		},
		Links: Links{
			PresignExpiry: Duration{s3link.DefaultExpiry},
		},
		Server: Server{
			Addr:        ":8080",
			AllowOrigin: "*",
		},
	}
}

// New creates a validated Config from the defaults and options.
func New(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a TOML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvEmbeddingHost   = "RAGCHAT_EMBEDDING_HOST"
	EnvGenerationHost  = "RAGCHAT_GENERATION_HOST"
	EnvEmbeddingModel  = "RAGCHAT_EMBEDDING_MODEL"
	EnvGenerationModel = "RAGCHAT_GENERATION_MODEL"
	EnvAPIKey          = "RAGCHAT_API_KEY"
	EnvPostgresURL     = "RAGCHAT_POSTGRES_URL"
	EnvS3Region        = "RAGCHAT_S3_REGION"
	EnvChatPrompt      = "RAGCHAT_CHAT_PROMPT"
)

// ApplyEnv overrides settings from environment variables and revalidates.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvEmbeddingHost, &c.AI.EmbeddingHost)
	set(EnvGenerationHost, &c.AI.GenerationHost)
	set(EnvEmbeddingModel, &c.AI.EmbeddingModel)
	set(EnvGenerationModel, &c.AI.GenerationModel)
	set(EnvAPIKey, &c.AI.APIKey)
	set(EnvS3Region, &c.Links.S3Region)
	set(EnvChatPrompt, &c.PromptTemplate)
	if v, ok := lookup(EnvPostgresURL); ok && v != "" {
		c.Storage.PostgresURL = v
		c.Storage.IndexBackend = IndexPostgres
	}
	return c.Validate()
}

// Validate checks ranges and required fields. It normalizes the AI hosts.
func (c *Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	r := c.Retrieval
	switch {
	case r.CandidateCount < 1:
		return invalid("retrieval.candidate_count must be positive")
	case r.PoolSize < 1:
		return invalid("retrieval.pool_size must be positive")
	case r.Workers < 1:
		return invalid("retrieval.workers must be positive")
	case r.MaxDocs < 1:
		return invalid("retrieval.max_docs must be positive")
	case r.MinDocs < 1 || r.MinDocs > r.MaxDocs:
		return invalid("retrieval.min_docs must be between 1 and max_docs")
	case r.GapWindow < 1:
		return invalid("retrieval.gap_window must be positive")
	case r.Fusion != string(ranking.ModeInterpolation) && r.Fusion != string(ranking.ModeRRF):
		return invalid("retrieval.fusion must be interpolation or rrf, got %q", r.Fusion)
	case r.FusionWeight < 0 || r.FusionWeight > 1:
		return invalid("retrieval.fusion_weight must be between 0 and 1")
	case r.RRFK < 1:
		return invalid("retrieval.rrf_k must be positive")
	}

	h := c.Conversation
	if h.HistoryPairs < 0 || h.HistoryTurns < 0 || h.MaxHistoryCharacters < 0 {
		return invalid("conversation bounds must not be negative")
	}

	switch c.Storage.IndexBackend {
	case IndexBadger:
	case IndexPostgres:
		if c.Storage.PostgresURL == "" {
			return invalid("storage.postgres_url is required for the postgres index")
		}
	default:
		return invalid("storage.index_backend must be badger or postgres, got %q", c.Storage.IndexBackend)
	}

	if c.Links.PresignExpiry.Duration <= 0 {
		return invalid("links.presign_expiry must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
