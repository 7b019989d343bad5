package scoring

import (
	"math"

	"github.com/dotcommander/farol/internal/types"
)

// Status thresholds on the 0-10 scale.
const (
	RedCeiling    = 4.0 // scores at or below are red
	YellowCeiling = 8.0 // scores at or below are yellow, above are green
)

// Classify returns the status of a score. NaN (no score) has no status.
func Classify(score float64) types.Status {
	switch {
	case math.IsNaN(score):
		return types.StatusNone
	case score <= RedCeiling:
		return types.StatusRed
	case score <= YellowCeiling:
		return types.StatusYellow
	default:
		return types.StatusGreen
	}
}

// ClassifyAll classifies every score in scores.
func ClassifyAll(scores []float64) []types.Status {
	out := make([]types.Status, len(scores))
	for i, s := range scores {
		out[i] = Classify(s)
	}
	return out
}

// Scorer maps one raw value onto the 0-10 scale. ok is false when the value
// has no score (missing input, or outside every configured range).
type Scorer interface {
	Score(value float64) (score float64, ok bool)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(value float64) (float64, bool)

// Score calls f.
func (f ScorerFunc) Score(value float64) (float64, bool) {
	return f(value)
}

// ScoreAll applies s to every value, producing NaN where there is no score.
func ScoreAll(s Scorer, values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		score, ok := s.Score(v)
		if !ok {
			score = math.NaN()
		}
		out[i] = score
	}
	return out
}
