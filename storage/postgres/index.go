// Package postgres implements storage.PassageIndex over a pgvector-enabled
// PostgreSQL table.
//
// The table is expected to look like:
//
//	CREATE TABLE passages (
//	    id        text PRIMARY KEY,
//	    passage   text NOT NULL,
//	    doc_type  text NOT NULL,
//	    metadata  jsonb NOT NULL DEFAULT '{}',
//	    embedding vector
//	);
//
// metadata uses the index field names understood by core.MetadataFromMap.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
)

const defaultTable = "passages"

var (
	// ErrConnStringRequired indicates no connection string was supplied.
	ErrConnStringRequired = errors.New("postgres connection string is required")

	// ErrInvalidTable indicates a table name that is not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PassageIndex queries passages stored in PostgreSQL.
type PassageIndex struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

var _ storage.PassageIndex = (*PassageIndex)(nil)

// Option configures a PassageIndex.
type Option func(*PassageIndex) error

// WithTable sets the table holding passages.
func WithTable(table string) Option {
	return func(ix *PassageIndex) error {
		if !identifier.MatchString(table) {
			return fmt.Errorf("%w: %q", ErrInvalidTable, table)
		}
		ix.table = table
		return nil
	}
}

// WithLogger sets a custom logger for the index.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *PassageIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewPassageIndex connects to PostgreSQL and verifies the connection.
func NewPassageIndex(ctx context.Context, connString string, opts ...Option) (storage.PassageIndex, error) {
	if connString == "" {
		return nil, ErrConnStringRequired
	}

	ix := &PassageIndex{
		table:  defaultTable,
		logger: slog.Default().With("component", "postgres-index"),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	ix.pool = pool
	return ix, nil
}

// Close closes the connection pool.
func (ix *PassageIndex) Close() error {
	if ix.pool != nil {
		ix.pool.Close()
	}
	return nil
}

func (ix *PassageIndex) lexicalQuery() string {
	return fmt.Sprintf(`
		SELECT id, passage, doc_type, metadata,
			ts_rank_cd(to_tsvector('english', passage), plainto_tsquery('english', $1)) AS score
		FROM %s
		WHERE to_tsvector('english', passage) @@ plainto_tsquery('english', $1)
		ORDER BY score DESC, id
		LIMIT $2`, ix.table)
}

func (ix *PassageIndex) semanticQuery() string {
	return fmt.Sprintf(`
		SELECT id, passage, doc_type, metadata,
			1 - (embedding <=> $1::vector) AS score
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector, id
		LIMIT $2`, ix.table)
}

// LexicalSearch ranks passages with PostgreSQL full-text search.
func (ix *PassageIndex) LexicalSearch(ctx context.Context, query string, k int) ([]core.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := ix.pool.Query(ctx, ix.lexicalQuery(), query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to run lexical search: %w", err)
	}
	return collectCandidates(rows)
}

// SemanticSearch ranks passages by cosine similarity to the embedding.
func (ix *PassageIndex) SemanticSearch(ctx context.Context, embedding []float32, k int) ([]core.Candidate, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}
	rows, err := ix.pool.Query(ctx, ix.semanticQuery(), pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to run semantic search: %w", err)
	}
	return collectCandidates(rows)
}

func collectCandidates(rows pgx.Rows) ([]core.Candidate, error) {
	defer rows.Close()

	var candidates []core.Candidate
	for rows.Next() {
		var (
			id, passage, docType string
			metadata             map[string]any
			score                float64
		)
		if err := rows.Scan(&id, &passage, &docType, &metadata, &score); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		candidates = append(candidates, toCandidate(id, passage, docType, metadata, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return candidates, nil
}

func toCandidate(id, passage, docType string, metadata map[string]any, score float64) core.Candidate {
	return core.Candidate{
		ID:       id,
		Score:    score,
		Passage:  passage,
		Type:     core.ParseDocType(docType),
		Metadata: core.MetadataFromMap(metadata),
	}
}
