package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/dotcommander/farol/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unavailabilityTable(t *testing.T) RangeTable {
	t.Helper()
	rt, err := NewRangeTable(
		Range{Lower: 8.01, Upper: 100, ScoreMin: 0, ScoreMax: 7},
		Range{Lower: 0, Upper: 4, ScoreMin: 9, ScoreMax: 10},
		Range{Lower: 4.01, Upper: 8, ScoreMin: 7, ScoreMax: 9},
	)
	require.NoError(t, err)
	return rt
}

func TestRangeTableHigherIsWorse(t *testing.T) {
	rt := unavailabilityTable(t)

	tests := []struct {
		in     float64
		want   float64
		wantOK bool
	}{
		{0, 10, true},
		{2, 9.5, true},
		{4, 9, true},
		{6, 8.0, true},
		{8, 7, true},
		{100, 0, true},
		{4.005, 0, false},
		{-1, 0, false},
		{100.5, 0, false},
	}

	for _, tt := range tests {
		got, ok := rt.Score(tt.in, HigherIsWorse, DefaultPrecision)
		assert.Equal(t, tt.wantOK, ok, "value %v", tt.in)
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 0.005, "value %v", tt.in)
		} else {
			assert.True(t, math.IsNaN(got))
		}
	}
}

func TestRangeTableHigherIsBetterUpperEdge(t *testing.T) {
	rt, err := NewRangeTable(
		Range{Lower: 0, Upper: 99.5, ScoreMin: 0, ScoreMax: 7},
		Range{Lower: 99.51, Upper: 100, ScoreMin: 7, ScoreMax: 10},
	)
	require.NoError(t, err)

	got, ok := rt.Score(100, HigherIsBetter, DefaultPrecision)
	require.True(t, ok)
	assert.Equal(t, 10.0, got)

	got, ok = rt.Score(99.51, HigherIsBetter, DefaultPrecision)
	require.True(t, ok)
	assert.Equal(t, 7.0, got)

	got, ok = rt.Score(49.75, HigherIsBetter, DefaultPrecision)
	require.True(t, ok)
	assert.Equal(t, 3.5, got)

	_, ok = rt.Score(99.505, HigherIsBetter, DefaultPrecision)
	assert.False(t, ok)
}

func TestRangeTableUpperEdgeIgnoresRounding(t *testing.T) {
	rt, err := NewRangeTable(Range{Lower: 0, Upper: 1, ScoreMin: 0, ScoreMax: 9.999})
	require.NoError(t, err)

	got, ok := rt.Score(1, HigherIsBetter, 2)
	require.True(t, ok)
	assert.Equal(t, 9.999, got)
}

func TestRangeTableNoRounding(t *testing.T) {
	rt, err := NewRangeTable(Range{Lower: 0, Upper: 3, ScoreMin: 0, ScoreMax: 10})
	require.NoError(t, err)
	got, ok := rt.Score(1, HigherIsBetter, NoRounding)
	require.True(t, ok)
	assert.InDelta(t, 10.0/3, got, 1e-12)
}

func TestRangeTableFirstMatchWins(t *testing.T) {
	rt, err := NewRangeTable(
		Range{Lower: 0, Upper: 10, ScoreMin: 0, ScoreMax: 10},
		Range{Lower: 5, Upper: 15, ScoreMin: 0, ScoreMax: 2},
	)
	require.NoError(t, err)

	got, ok := rt.Score(7, HigherIsWorse, DefaultPrecision)
	require.True(t, ok)
	assert.Equal(t, 3.0, got)

	overlaps := rt.Overlaps()
	require.Len(t, overlaps, 1)
	assert.Equal(t, 5.0, overlaps[0].Second.Lower)

	assert.Empty(t, unavailabilityTable(t).Overlaps())
}

func TestRangeTableOverlapsWithinWideRange(t *testing.T) {
	rt, err := NewRangeTable(
		Range{Lower: 0, Upper: 100, ScoreMin: 0, ScoreMax: 10},
		Range{Lower: 1, Upper: 2, ScoreMin: 0, ScoreMax: 10},
		Range{Lower: 3, Upper: 4, ScoreMin: 0, ScoreMax: 10},
		Range{Lower: 100, Upper: 200, ScoreMin: 0, ScoreMax: 10},
	)
	require.NoError(t, err)

	overlaps := rt.Overlaps()
	require.Len(t, overlaps, 2, "a range touching only the boundary does not overlap")
	for i, lower := range []float64{1, 3} {
		assert.Equal(t, 100.0, overlaps[i].First.Upper)
		assert.Equal(t, lower, overlaps[i].Second.Lower)
	}
}

func TestRangeValidation(t *testing.T) {
	tests := []struct {
		name string
		r    Range
	}{
		{"inverted bounds", Range{Lower: 5, Upper: 1, ScoreMin: 0, ScoreMax: 10}},
		{"empty interval", Range{Lower: 1, Upper: 1, ScoreMin: 0, ScoreMax: 10}},
		{"inverted scores", Range{Lower: 0, Upper: 1, ScoreMin: 8, ScoreMax: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.r.Lower, tt.r.Upper, tt.r.ScoreMin, tt.r.ScoreMax)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRange))
			assert.True(t, errors.Is(err, types.ErrValidation))

			_, err = NewRangeTable(tt.r)
			assert.True(t, errors.Is(err, ErrInvalidRange))
		})
	}

	_, err := NewRangeTable()
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParseRangeMode(t *testing.T) {
	m, err := ParseRangeMode("Higher-Is-Better")
	require.NoError(t, err)
	assert.Equal(t, HigherIsBetter, m)
	assert.Equal(t, "higher-is-better", m.String())

	_, err = ParseRangeMode("sideways")
	assert.True(t, errors.Is(err, types.ErrValidation))
}
