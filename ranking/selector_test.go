package ranking

import (
	"testing"

	"github.com/poiesic/ragchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(scores ...float64) []core.RankedCandidate {
	out := make([]core.RankedCandidate, len(scores))
	for i, s := range scores {
		out[i] = core.RankedCandidate{
			Candidate:  core.Candidate{ID: string(rune('a' + i))},
			FusedScore: s,
		}
	}
	return out
}

func scoresOf(cs []core.RankedCandidate) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.FusedScore
	}
	return out
}

func TestNewSelector_Invalid(t *testing.T) {
	_, err := NewSelector(0)
	assert.ErrorIs(t, err, ErrInvalidMaxDocs)

	_, err = NewSelector(5, WithPolicy(SelectionPolicy{MinDocs: 0, GapWindow: 5}))
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestSelect_ScenarioA_DefaultKeepsMaxDocs(t *testing.T) {
	s, err := NewSelector(5)
	require.NoError(t, err)

	got := s.Select(makePool(0.95, 0.90, 0.89, 0.88, 0.40, 0.39, 0.10))
	assert.Equal(t, []float64{0.95, 0.90, 0.89, 0.88, 0.40}, scoresOf(got))
}

func TestSelect_ScenarioA_AdaptiveCutsAtDrop(t *testing.T) {
	// Without the floor the largest drop (0.88 -> 0.40) ends the selection.
	s, err := NewSelector(5, WithPolicy(SelectionPolicy{MinDocs: 1, GapWindow: 5}))
	require.NoError(t, err)

	got := s.Select(makePool(0.95, 0.90, 0.89, 0.88, 0.40, 0.39))
	assert.Equal(t, []float64{0.95, 0.90, 0.89, 0.88}, scoresOf(got))
}

func TestSelect_ScenarioB_SmallPoolSorted(t *testing.T) {
	s, err := NewSelector(5)
	require.NoError(t, err)

	got := s.Select(makePool(0.2, 0.9, 0.5))
	assert.Equal(t, []float64{0.9, 0.5, 0.2}, scoresOf(got))
}

func TestSelect_Bound(t *testing.T) {
	for maxDocs := 1; maxDocs <= 7; maxDocs++ {
		s, err := NewSelector(maxDocs)
		require.NoError(t, err)

		for size := 0; size <= 12; size++ {
			scores := make([]float64, size)
			for i := range scores {
				scores[i] = float64((i*7)%11) / 10
			}
			got := s.Select(makePool(scores...))

			assert.Len(t, got, min(size, maxDocs), "maxDocs=%d size=%d", maxDocs, size)
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].FusedScore, got[i].FusedScore)
			}
		}
	}
}

func TestSelect_DoesNotModifyInput(t *testing.T) {
	s, err := NewSelector(2)
	require.NoError(t, err)

	in := makePool(0.1, 0.9, 0.5)
	s.Select(in)
	assert.Equal(t, []float64{0.1, 0.9, 0.5}, scoresOf(in))
}

func TestSelect_StableOnTies(t *testing.T) {
	s, err := NewSelector(5)
	require.NoError(t, err)

	got := s.Select(makePool(0.5, 0.5, 0.5))
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestSelect_WideWindowClampedToMaxDocs(t *testing.T) {
	// The cliff is beyond MaxDocs, so the cap wins.
	s, err := NewSelector(3, WithPolicy(SelectionPolicy{MinDocs: 1, GapWindow: 10}))
	require.NoError(t, err)

	got := s.Select(makePool(0.9, 0.89, 0.88, 0.87, 0.86, 0.1))
	assert.Len(t, got, 3)
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		name   string
		max    int
		policy SelectionPolicy
		scores []float64
		want   int
	}{
		{name: "default policy", max: 5, policy: DefaultPolicy(5), scores: []float64{1, 0.1, 0.09, 0.08, 0.07, 0.06}, want: 5},
		{name: "drop after first", max: 5, policy: SelectionPolicy{MinDocs: 1, GapWindow: 5}, scores: []float64{1, 0.1, 0.09, 0.08, 0.07, 0.06}, want: 1},
		{name: "floor of four", max: 5, policy: SelectionPolicy{MinDocs: 4, GapWindow: 5}, scores: []float64{1, 0.1, 0.09, 0.08, 0.07, 0.06}, want: 4},
		{name: "window of one", max: 5, policy: SelectionPolicy{MinDocs: 2, GapWindow: 1}, scores: []float64{1, 0.5, 0.4, 0.3, 0.2, 0.1}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSelector(tt.max, WithPolicy(tt.policy))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Cutoff(tt.scores))
		})
	}
}

func TestScoreGaps(t *testing.T) {
	gaps := ScoreGaps([]float64{0.95, 0.90, 0.89, 0.88, 0.40})
	require.Len(t, gaps, 4)
	assert.InDelta(t, 0.05, gaps[0], 1e-9)
	assert.InDelta(t, 0.48, gaps[3], 1e-9)

	assert.Nil(t, ScoreGaps([]float64{1}))
	assert.Nil(t, ScoreGaps(nil))
}

func TestLargestDrop(t *testing.T) {
	assert.Equal(t, 3, LargestDrop([]float64{0.05, 0.01, 0.01, 0.48}))
	assert.Equal(t, 0, LargestDrop([]float64{0.2, 0.2, 0.1}), "first maximum wins")
	assert.Equal(t, -1, LargestDrop(nil))
}
