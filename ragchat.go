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


// Package ragchat opens the storage, model services and link signer a
// deployment needs and assembles chatbots from them.
package ragchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragchat/ai"
	"github.com/poiesic/ragchat/ai/openai"
	"github.com/poiesic/ragchat/chat"
	"github.com/poiesic/ragchat/citation"
	"github.com/poiesic/ragchat/config"
	"github.com/poiesic/ragchat/conversation"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/prompt"
	"github.com/poiesic/ragchat/ranking"
	"github.com/poiesic/ragchat/retrieval"
	"github.com/poiesic/ragchat/storage"
	"github.com/poiesic/ragchat/storage/badger"
	"github.com/poiesic/ragchat/storage/postgres"
	"github.com/poiesic/ragchat/storage/s3link"
)

// ErrSeedUnsupported is returned when passages are seeded into an index that is
// populated elsewhere.
var ErrSeedUnsupported = errors.New("seeding is only supported for the badger index")

// System owns the storage, model provider and link signer of one deployment.
type System struct {
	cfg           *config.Config
	backend       *badger.Backend
	conversations storage.ConversationRepository
	index         storage.PassageIndex
	localIndex    *badger.PassageIndex // Set when index is the badger index
	provider      ai.AIProvider
	links         citation.LinkResolver
	retrievers    []*retrieval.Retriever
	logger        *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	provider ai.AIProvider
	links    citation.LinkResolver
}

// WithProvider uses the given model provider instead of the OpenAI-compatible one.
func WithProvider(p ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = p
	}
}

// WithLinkResolver uses the given resolver instead of the configured S3 signer.
func WithLinkResolver(r citation.LinkResolver) SystemOption {
	return func(o *systemOptions) {
		o.links = r
	}
}

// Open builds a System from a validated Config.
func Open(ctx context.Context, cfg *config.Config, opts ...SystemOption) (*System, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &systemOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s := &System{cfg: cfg, logger: slog.Default().With("component", "system")}

	backend, err := badger.OpenBackend(cfg.Storage.Path, cfg.Storage.Path == "")
	if err != nil {
		return nil, err
	}
	s.backend = backend

	s.conversations, err = badger.NewConversationRepository(backend)
	if err != nil {
		s.Close()
		return nil, err
	}

	switch cfg.Storage.IndexBackend {
	case config.IndexPostgres:
		s.index, err = postgres.NewPassageIndex(ctx, cfg.Storage.PostgresURL,
			postgres.WithTable(cfg.Storage.PassageTable))
	default:
		s.localIndex, err = badger.NewPassageIndex(backend)
		s.index = s.localIndex
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	s.provider = options.provider
	if s.provider == nil {
		aiCfg := cfg.AI
		s.provider, err = openai.NewProvider(&aiCfg)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	s.links = options.links
	if s.links == nil && cfg.Links.S3Region != "" {
		s.links, err = s3link.New(ctx, cfg.Links.S3Region, cfg.Links.PresignExpiry.Duration)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases everything the System opened. It is safe to call on a
// partially opened System.
func (s *System) Close() error {
	var errs []error
	for _, r := range s.retrievers {
		r.Release()
	}
	s.retrievers = nil
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Error("error closing passage index", "err", err)
			errs = append(errs, err)
		}
	}
	if s.conversations != nil {
		if err := s.conversations.Close(); err != nil {
			s.logger.Error("error closing conversation repository", "err", err)
			errs = append(errs, err)
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the configuration the System was opened with.
func (s *System) Config() *config.Config {
	return s.cfg
}

// ConversationStore returns a store over the System's conversation repository.
func (s *System) ConversationStore() (*conversation.Store, error) {
	return conversation.NewStore(s.conversations,
		conversation.WithHistoryPairs(s.cfg.Conversation.HistoryPairs))
}

// NewChatbot assembles a Chatbot from the configuration. Its worker pool is
// released by Close.
func (s *System) NewChatbot(opts ...chat.Option) (*chat.Chatbot, error) {
	r := s.cfg.Retrieval

	retriever, err := retrieval.NewRetriever(s.index, s.provider.Embedder(),
		retrieval.WithCandidateCount(r.CandidateCount),
		retrieval.WithPoolSize(r.Workers))
	if err != nil {
		return nil, err
	}

	fuser, err := ranking.NewFuser(
		ranking.WithMode(ranking.Mode(r.Fusion)),
		ranking.WithWeight(r.FusionWeight),
		ranking.WithRRFK(r.RRFK),
		ranking.WithPoolSize(r.PoolSize))
	if err != nil {
		retriever.Release()
		return nil, err
	}

	selector, err := ranking.NewSelector(r.MaxDocs,
		ranking.WithPolicy(ranking.SelectionPolicy{MinDocs: r.MinDocs, GapWindow: r.GapWindow}))
	if err != nil {
		retriever.Release()
		return nil, err
	}

	builder, err := prompt.NewBuilder(s.cfg.PromptTemplate,
		prompt.WithHistoryTurns(s.cfg.Conversation.HistoryTurns),
		prompt.WithMaxHistoryCharacters(s.cfg.Conversation.MaxHistoryCharacters))
	if err != nil {
		retriever.Release()
		return nil, err
	}

	store, err := s.ConversationStore()
	if err != nil {
		retriever.Release()
		return nil, err
	}

	var tokenizerOpts []citation.TokenizerOption
	if s.links != nil {
		tokenizerOpts = append(tokenizerOpts, citation.WithLinkResolver(s.links))
	}

	bot, err := chat.NewChatbot(chat.Components{
		Retriever: retriever,
		Fuser:     fuser,
		Selector:  selector,
		Tokenizer: citation.NewTokenizer(tokenizerOpts...),
		Builder:   builder,
		Generator: s.provider.Generator(),
		Resolver:  citation.NewResolver(nil),
		Store:     store,
	}, opts...)
	if err != nil {
		retriever.Release()
		return nil, err
	}

	s.retrievers = append(s.retrievers, retriever)
	return bot, nil
}

// SeedPassage is one passage to add to the local index.
type SeedPassage struct {
	ID       string         `json:"id"`
	Passage  string         `json:"passage"`
	DocType  string         `json:"doc_type"`
	Metadata map[string]any `json:"metadata"`
}

// SeedPassages embeds passages and writes them to the local badger index.
func (s *System) SeedPassages(ctx context.Context, passages []SeedPassage) (int, error) {
	if s.localIndex == nil {
		return 0, ErrSeedUnsupported
	}
	if len(passages) == 0 {
		return 0, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Passage
	}
	vectors, err := s.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d passages", len(vectors), len(passages))
	}

	records := make([]*storage.Passage, len(passages))
	for i, p := range passages {
		records[i] = &storage.Passage{
			ID:       p.ID,
			Text:     p.Passage,
			Type:     core.ParseDocType(p.DocType),
			Metadata: core.MetadataFromMap(p.Metadata),
			Vector:   vectors[i],
		}
	}
	if err := s.localIndex.AddPassages(ctx, records...); err != nil {
		return 0, err
	}
	s.logger.Info("seeded passages", "count", len(records))
	return len(records), nil
}
