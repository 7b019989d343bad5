package scoring

import (
	"math"
	"testing"

	"github.com/dotcommander/farol/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  types.Status
	}{
		{"zero", 0, types.StatusRed},
		{"red boundary", 4, types.StatusRed},
		{"just above red", 4.01, types.StatusYellow},
		{"yellow mid", 6.6, types.StatusYellow},
		{"yellow boundary", 8, types.StatusYellow},
		{"just above yellow", 8.01, types.StatusGreen},
		{"top", 10, types.StatusGreen},
		{"no score", math.NaN(), types.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score))
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	scores := []float64{1.5, 4, 6.6, 8, 9.99, math.NaN()}
	first := ClassifyAll(scores)
	second := ClassifyAll(scores)
	assert.Equal(t, first, second)
}

func TestScoreAll(t *testing.T) {
	s := ScorerFunc(func(v float64) (float64, bool) {
		if v < 0 {
			return 0, false
		}
		return v * 2, true
	})
	got := ScoreAll(s, []float64{1, -1, 3})
	assert.Equal(t, 2.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 6.0, got[2])
}

func TestRound(t *testing.T) {
	assert.Equal(t, 7.67, Round(7.666666, 2))
	assert.Equal(t, 7.123, Round(7.123, 3))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, 1.23456, Round(1.23456, NoRounding))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10.0, Clamp(10.6, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
}
