package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var ErrInvalidRange = fmt.Errorf("%w: invalid range", types.ErrValidation)

// RangeMode selects how a range interpolates between its scores.
type RangeMode int

const (
	// HigherIsWorse decays from ScoreMax at Lower to ScoreMin at Upper.
	HigherIsWorse RangeMode = iota
	// HigherIsBetter rises from ScoreMin at Lower to ScoreMax at Upper.
	HigherIsBetter
)

func (m RangeMode) String() string {
	if m == HigherIsBetter {
		return "higher-is-better"
	}
	return "higher-is-worse"
}

// ParseRangeMode parses higher-is-worse or higher-is-better.
func ParseRangeMode(s string) (RangeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "higher-is-worse", "worse":
		return HigherIsWorse, nil
	case "higher-is-better", "better":
		return HigherIsBetter, nil
	default:
		return HigherIsWorse, fmt.Errorf("%w: unknown range mode %q (want higher-is-worse or higher-is-better)", types.ErrValidation, s)
	}
}

// Range maps [Lower, Upper] linearly onto [ScoreMin, ScoreMax].
type Range struct {
	Lower    float64 `json:"lower" yaml:"lower"`
	Upper    float64 `json:"upper" yaml:"upper"`
	ScoreMin float64 `json:"score_min" yaml:"score_min"`
	ScoreMax float64 `json:"score_max" yaml:"score_max"`
}

// NewRange validates and returns a range.
func NewRange(lower, upper, scoreMin, scoreMax float64) (Range, error) {
	r := Range{Lower: lower, Upper: upper, ScoreMin: scoreMin, ScoreMax: scoreMax}
	return r, r.Validate()
}

// Validate checks Lower < Upper and ScoreMin <= ScoreMax.
func (r Range) Validate() error {
	if !(r.Lower < r.Upper) {
		return fmt.Errorf("%w: lower %g must be below upper %g", ErrInvalidRange, r.Lower, r.Upper)
	}
	if !(r.ScoreMin <= r.ScoreMax) {
		return fmt.Errorf("%w: score_min %g exceeds score_max %g", ErrInvalidRange, r.ScoreMin, r.ScoreMax)
	}
	return nil
}

// Contains reports whether v lies in [Lower, Upper].
func (r Range) Contains(v float64) bool {
	return r.Lower <= v && v <= r.Upper
}

func (r Range) score(v float64, mode RangeMode) float64 {
	frac := (v - r.Lower) / (r.Upper - r.Lower)
	span := r.ScoreMax - r.ScoreMin
	if mode == HigherIsWorse {
		return r.ScoreMax - frac*span
	}
	return r.ScoreMin + frac*span
}

// RangeTable is a list of ranges sorted ascending by Lower. Lookup is
// first-match-wins, so where ranges overlap the earlier one scores.
type RangeTable struct {
	ranges []Range
}

// NewRangeTable validates every range and sorts them by Lower, keeping the
// given order among equal lower bounds.
func NewRangeTable(ranges ...Range) (RangeTable, error) {
	if len(ranges) == 0 {
		return RangeTable{}, fmt.Errorf("%w: no ranges", ErrInvalidRange)
	}
	sorted := append([]Range(nil), ranges...)
	for i, r := range sorted {
		if err := r.Validate(); err != nil {
			return RangeTable{}, fmt.Errorf("range %d: %w", i, err)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })
	return RangeTable{ranges: sorted}, nil
}

// Ranges returns the sorted ranges.
func (t RangeTable) Ranges() []Range {
	return append([]Range(nil), t.ranges...)
}

// Overlap is a pair of ranges sharing more than a boundary point.
type Overlap struct {
	First  Range
	Second Range
}

// Overlaps lists every range whose interior intersects an earlier one. First
// is the earlier range reaching furthest up.
func (t RangeTable) Overlaps() []Overlap {
	var out []Overlap
	if len(t.ranges) == 0 {
		return out
	}
	widest := t.ranges[0]
	for _, cur := range t.ranges[1:] {
		if cur.Lower < widest.Upper {
			out = append(out, Overlap{First: widest, Second: cur})
		}
		if cur.Upper > widest.Upper {
			widest = cur
		}
	}
	return out
}

// Score returns the score of v from the first range containing it, rounded to
// digits. ok is false when v is NaN or outside every range. In HigherIsBetter
// mode a value on the upper edge of a rising range scores exactly ScoreMax.
func (t RangeTable) Score(v float64, mode RangeMode, digits int) (float64, bool) {
	if math.IsNaN(v) {
		return math.NaN(), false
	}
	for _, r := range t.ranges {
		if !r.Contains(v) {
			continue
		}
		if mode == HigherIsBetter && v == r.Upper && r.ScoreMax > r.ScoreMin {
			return r.ScoreMax, true
		}
		return Round(r.score(v, mode), digits), true
	}
	return math.NaN(), false
}

// Scorer binds the table to a mode and precision.
func (t RangeTable) Scorer(mode RangeMode, digits int) Scorer {
	return ScorerFunc(func(v float64) (float64, bool) {
		return t.Score(v, mode, digits)
	})
}
