package badger

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
)

// BM25 parameters
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// PassageIndex implements storage.PassageIndex over passages stored in BadgerDB.
// Both searches scan every stored passage, so it suits local and test corpora.
type PassageIndex struct {
	backend *Backend
}

var _ storage.PassageIndex = (*PassageIndex)(nil)

// NewPassageIndex creates a passage index on the backend.
// It returns the concrete type so callers can load passages with AddPassages.
func NewPassageIndex(backend *Backend) (*PassageIndex, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &PassageIndex{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (ix *PassageIndex) Close() error {
	return nil
}

// AddPassages stores passages, replacing any with the same ID.
// Passages without an ID get one derived from their document and text.
func (ix *PassageIndex) AddPassages(ctx context.Context, passages ...*storage.Passage) error {
	return ix.backend.update(ctx, func(tx *badger.Txn) error {
		for _, p := range passages {
			if p.ID == "" {
				p.ID = strconv.FormatUint(uint64(core.IDFromContent(p.Metadata.DocID+"\x00"+p.Text)), 16)
			}
			c := p.Candidate(0)
			if err := core.ValidateCandidate(&c); err != nil {
				return err
			}
			if err := tx.Set(makePassageKey(p.ID), storage.MarshalPassage(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

type scored struct {
	passage *storage.Passage
	score   float64
}

// LexicalSearch ranks passages by BM25 over the stop-word filtered query terms.
func (ix *PassageIndex) LexicalSearch(ctx context.Context, query string, k int) ([]core.Candidate, error) {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	type doc struct {
		passage *storage.Passage
		tf      map[string]int
		length  int
	}

	var docs []doc
	df := make(map[string]int)
	totalLength := 0
	err := ix.backend.scanPrefix([]byte(passagePrefix), func(val []byte) error {
		p, err := storage.UnmarshalPassage(val)
		if err != nil {
			return err
		}
		tokens := tokenize(p.Text)
		tf := termFrequencies(tokens)
		for term := range tf {
			df[term]++
		}
		docs = append(docs, doc{passage: p, tf: tf, length: len(tokens)})
		totalLength += len(tokens)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	n := float64(len(docs))
	avgLength := float64(totalLength) / n
	if avgLength == 0 {
		avgLength = 1
	}

	var results []scored
	for _, d := range docs {
		var score float64
		for _, term := range terms {
			f := float64(d.tf[term])
			if f == 0 {
				continue
			}
			idf := math.Log(1 + (n-float64(df[term])+0.5)/(float64(df[term])+0.5))
			score += idf * f * (bm25K1 + 1) / (f + bm25K1*(1-bm25B+bm25B*float64(d.length)/avgLength))
		}
		if score > 0 {
			results = append(results, scored{passage: d.passage, score: score})
		}
	}

	return topK(results, k), nil
}

// SemanticSearch ranks passages by cosine similarity mapped onto [0,1] as (1+cos)/2.
func (ix *PassageIndex) SemanticSearch(ctx context.Context, embedding []float32, k int) ([]core.Candidate, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}

	var results []scored
	err := ix.backend.scanPrefix([]byte(passagePrefix), func(val []byte) error {
		p, err := storage.UnmarshalPassage(val)
		if err != nil {
			return err
		}
		// Skip passages without embeddings
		if len(p.Vector) == 0 {
			return nil
		}
		results = append(results, scored{passage: p, score: (1 + cosine(embedding, p.Vector)) / 2})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return topK(results, k), nil
}

// topK sorts by score descending, keeping key order among equal scores.
func topK(results []scored, k int) []core.Candidate {
	slices.SortStableFunc(results, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(results) > k {
		results = results[:k]
	}

	candidates := make([]core.Candidate, len(results))
	for i, r := range results {
		candidates[i] = r.passage.Candidate(r.score)
	}
	return candidates
}

// cosine calculates the cosine similarity of two vectors over their common length.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
