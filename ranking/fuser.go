package ranking

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/ragchat/core"
)

// Mode selects the fusion algorithm.
type Mode string

const (
	ModeInterpolation Mode = "interpolation"
	ModeRRF           Mode = "rrf"
)

// Fusion defaults
const (
	DefaultWeight   = 0.5
	DefaultRRFK     = 60
	DefaultPoolSize = 20
)

// Fuser combines lexical and semantic hits into a single ranked pool.
// A Fuser is immutable and safe for concurrent use.
type Fuser struct {
	mode     Mode
	weight   float64
	rrfK     int
	poolSize int
	logger   *slog.Logger
}

// FuserOption configures a Fuser.
type FuserOption func(*Fuser) error

// WithMode sets the fusion algorithm.
func WithMode(mode Mode) FuserOption {
	return func(f *Fuser) error {
		if mode != ModeInterpolation && mode != ModeRRF {
			return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
		}
		f.mode = mode
		return nil
	}
}

// WithWeight sets the lexical weight used by interpolation.
func WithWeight(w float64) FuserOption {
	return func(f *Fuser) error {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidWeight, w)
		}
		f.weight = w
		return nil
	}
}

// WithRRFK sets the RRF rank constant.
func WithRRFK(k int) FuserOption {
	return func(f *Fuser) error {
		if k <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidRRFK, k)
		}
		f.rrfK = k
		return nil
	}
}

// WithPoolSize sets how many fused candidates are kept.
func WithPoolSize(n int) FuserOption {
	return func(f *Fuser) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPoolSize, n)
		}
		f.poolSize = n
		return nil
	}
}

// WithFuserLogger sets a custom logger.
func WithFuserLogger(logger *slog.Logger) FuserOption {
	return func(f *Fuser) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFuser creates a Fuser. Without options it interpolates with weight 0.5
// and keeps a pool of 20.
func NewFuser(opts ...FuserOption) (*Fuser, error) {
	f := &Fuser{
		mode:     ModeInterpolation,
		weight:   DefaultWeight,
		rrfK:     DefaultRRFK,
		poolSize: DefaultPoolSize,
		logger:   slog.Default().With("component", "fuser"),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Mode returns the configured fusion algorithm.
func (f *Fuser) Mode() Mode {
	return f.mode
}

// Fuse merges the two hit lists. Inputs are read, never modified.
func (f *Fuser) Fuse(lexical, semantic []core.Candidate) []core.RankedCandidate {
	var lexScores, semScores []float64
	switch f.mode {
	case ModeRRF:
		lexScores = rrfScores(len(lexical), f.rrfK)
		semScores = rrfScores(len(semantic), f.rrfK)
	default:
		lexScores = minMax(candidateScores(lexical))
		semScores = minMax(candidateScores(semantic))
	}

	index := make(map[string]int, len(lexical)+len(semantic))
	var merged []core.RankedCandidate

	for i, c := range lexical {
		key := c.Key()
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = len(merged)
		merged = append(merged, core.RankedCandidate{Candidate: c, LexicalScore: lexScores[i]})
	}

	semSeen := make(map[string]bool, len(semantic))
	for i, c := range semantic {
		key := c.Key()
		if semSeen[key] {
			continue
		}
		semSeen[key] = true
		if pos, ok := index[key]; ok {
			merged[pos].SemanticScore = semScores[i]
			continue
		}
		index[key] = len(merged)
		merged = append(merged, core.RankedCandidate{Candidate: c, SemanticScore: semScores[i]})
	}

	for i := range merged {
		merged[i].FusedScore = f.combine(merged[i].LexicalScore, merged[i].SemanticScore)
	}

	slices.SortStableFunc(merged, func(a, b core.RankedCandidate) int {
		return cmp.Compare(b.FusedScore, a.FusedScore)
	})
	if len(merged) > f.poolSize {
		merged = merged[:f.poolSize]
	}

	f.logger.Debug("fused retrieval results",
		"mode", f.mode, "lexical", len(lexical), "semantic", len(semantic), "pool", len(merged))
	return merged
}

func (f *Fuser) combine(lex, sem float64) float64 {
	if f.mode == ModeRRF {
		return lex + sem
	}
	return f.weight*lex + (1-f.weight)*sem
}

func candidateScores(cs []core.Candidate) []float64 {
	scores := make([]float64, len(cs))
	for i, c := range cs {
		scores[i] = c.Score
	}
	return scores
}

// minMax maps scores onto [0,1]. A list whose scores are all equal maps to 1.
func minMax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	lo, hi := slices.Min(scores), slices.Max(scores)
	for i, s := range scores {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = (s - lo) / (hi - lo)
	}
	return out
}

// rrfScores returns 1/(k+rank) for ranks 1..n.
func rrfScores(n, k int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(k+i+1)
	}
	return out
}
