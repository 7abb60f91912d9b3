package ranking

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/ragchat/core"
)

// DefaultMaxDocs is the number of documents shown to the model.
const DefaultMaxDocs = 5

// SelectionPolicy controls the score-gap cutoff.
//
// The cutoff looks for the largest drop between consecutive scores among the
// first GapWindow candidates and keeps everything up to that drop, but never
// fewer than MinDocs and never more than MaxDocs. With MinDocs equal to MaxDocs
// the cutoff can never shorten the result.
type SelectionPolicy struct {
	MinDocs   int
	GapWindow int
}

// DefaultPolicy returns the policy that always keeps maxDocs documents.
func DefaultPolicy(maxDocs int) SelectionPolicy {
	return SelectionPolicy{MinDocs: maxDocs, GapWindow: maxDocs}
}

// Selector cuts a fused pool down to the documents shown to the model.
type Selector struct {
	maxDocs int
	policy  SelectionPolicy
	logger  *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector) error

// WithPolicy replaces the default selection policy.
func WithPolicy(p SelectionPolicy) SelectorOption {
	return func(s *Selector) error {
		if p.MinDocs < 1 || p.GapWindow < 1 {
			return fmt.Errorf("%w: %+v", ErrInvalidPolicy, p)
		}
		s.policy = p
		return nil
	}
}

// WithSelectorLogger sets a custom logger.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSelector creates a Selector capped at maxDocs using DefaultPolicy unless overridden.
func NewSelector(maxDocs int, opts ...SelectorOption) (*Selector, error) {
	if maxDocs < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxDocs, maxDocs)
	}
	s := &Selector{
		maxDocs: maxDocs,
		policy:  DefaultPolicy(maxDocs),
		logger:  slog.Default().With("component", "selector"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MaxDocs returns the hard cap on selected documents.
func (s *Selector) MaxDocs() int {
	return s.maxDocs
}

// Select returns the chosen documents sorted by descending fused score.
// The input is not modified.
func (s *Selector) Select(pool []core.RankedCandidate) []core.RankedCandidate {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b core.RankedCandidate) int {
		return cmp.Compare(b.FusedScore, a.FusedScore)
	})

	if len(sorted) <= s.maxDocs {
		return sorted
	}

	cut := s.Cutoff(fusedScores(sorted))
	s.logger.Debug("selected documents", "pool", len(sorted), "selected", cut)
	return sorted[:cut]
}

// Cutoff returns how many of the descending scores to keep under the policy.
func (s *Selector) Cutoff(scores []float64) int {
	window := min(s.policy.GapWindow, len(scores))
	cut := LargestDrop(ScoreGaps(scores[:window])) + 1
	cut = max(cut, s.policy.MinDocs)
	return min(cut, s.maxDocs, len(scores))
}

// ScoreGaps returns the drops between consecutive scores: gaps[i] = scores[i]-scores[i+1].
func ScoreGaps(scores []float64) []float64 {
	if len(scores) < 2 {
		return nil
	}
	gaps := make([]float64, len(scores)-1)
	for i := range gaps {
		gaps[i] = scores[i] - scores[i+1]
	}
	return gaps
}

// LargestDrop returns the index of the first largest gap, or -1 when there are none.
func LargestDrop(gaps []float64) int {
	best := -1
	for i, g := range gaps {
		if best < 0 || g > gaps[best] {
			best = i
		}
	}
	return best
}

func fusedScores(cs []core.RankedCandidate) []float64 {
	scores := make([]float64, len(cs))
	for i, c := range cs {
		scores[i] = c.FusedScore
	}
	return scores
}
