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


// Package retrieval runs the lexical and semantic queries for a user query.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragchat/ai"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
)

const (
	// DefaultCandidateCount is how many candidates each signal returns.
	DefaultCandidateCount = 10
	// DefaultPoolSize is the number of workers shared by all queries.
	DefaultPoolSize = 8
)

// Hits holds the raw candidates of both signals, best first, on their own scales.
type Hits struct {
	Lexical  []core.Candidate
	Semantic []core.Candidate
}

// Retriever queries a passage index with both retrieval signals at once.
// It is safe for concurrent use.
type Retriever struct {
	index          storage.PassageIndex
	embedder       ai.Embedder
	pool           *ants.Pool
	candidateCount int
	logger         *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithCandidateCount sets how many candidates each signal returns.
func WithCandidateCount(n int) Option {
	return func(r *Retriever) error {
		if n < 1 {
			return ErrInvalidCandidateCount
		}
		r.candidateCount = n
		return nil
	}
}

// WithPoolSize sets the worker pool size. Values below 2 are raised to 2 so
// both signals can always run side by side.
func WithPoolSize(size int) Option {
	return func(r *Retriever) error {
		if size < 2 {
			size = 2
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a Retriever. Call Release when done.
func NewRetriever(index storage.PassageIndex, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		index:          index,
		embedder:       embedder,
		pool:           pool,
		candidateCount: DefaultCandidateCount,
		logger:         slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}
	return r, nil
}

// Retrieve embeds the query and runs both searches concurrently.
// Either search failing fails the whole call.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Hits, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	var (
		wg          sync.WaitGroup
		hits        Hits
		lexicalErr  error
		semanticErr error
	)

	wg.Add(2)
	if err := r.pool.Submit(func() {
		defer wg.Done()
		hits.Lexical, lexicalErr = r.index.LexicalSearch(ctx, query, r.candidateCount)
	}); err != nil {
		wg.Done()
		lexicalErr = err
	}
	if err := r.pool.Submit(func() {
		defer wg.Done()
		hits.Semantic, semanticErr = r.semantic(ctx, query)
	}); err != nil {
		wg.Done()
		semanticErr = err
	}
	wg.Wait()

	var errs []error
	if lexicalErr != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrLexicalSearch, lexicalErr))
	}
	if semanticErr != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrSemanticSearch, semanticErr))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	r.logger.Debug("retrieved candidates",
		"lexical", len(hits.Lexical),
		"semantic", len(hits.Semantic))
	return &hits, nil
}

func (r *Retriever) semantic(ctx context.Context, query string) ([]core.Candidate, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.index.SemanticSearch(ctx, vector, r.candidateCount)
}

// Release stops the worker pool. The Retriever must not be used afterwards.
func (r *Retriever) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
