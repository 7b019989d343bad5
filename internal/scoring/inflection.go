package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var ErrInvalidInflection = fmt.Errorf("%w: invalid inflection", types.ErrValidation)

// Trend is the overall direction of an inflection curve.
type Trend int

const (
	Decreasing Trend = iota
	Increasing
)

func (t Trend) String() string {
	if t == Increasing {
		return "increasing"
	}
	return "decreasing"
}

// ParseTrend parses increasing or decreasing.
func ParseTrend(s string) (Trend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decreasing":
		return Decreasing, nil
	case "increasing":
		return Increasing, nil
	default:
		return Decreasing, fmt.Errorf("%w: unknown trend %q (want increasing or decreasing)", ErrInvalidInflection, s)
	}
}

// Inflection is a two-segment linear curve meeting at a pivot. A decreasing
// curve runs from (Lower, Max) through the pivot to (Upper, Min); an
// increasing one from (Lower, Min) through the pivot to (Upper, Max). Scores
// are clamped to [Min, Max].
type Inflection struct {
	Pivot Point
	Min   float64
	Max   float64
	Trend Trend
	Lower float64
	Upper float64

	before line
	after  line
}

// InflectionOption customizes NewInflection.
type InflectionOption func(*Inflection)

// WithScoreBounds sets the score floor and ceiling (default 0 and 10).
func WithScoreBounds(lo, hi float64) InflectionOption {
	return func(in *Inflection) {
		in.Min, in.Max = lo, hi
	}
}

// WithDomain sets the domain bounds (default 0 and pivot+1).
func WithDomain(lower, upper float64) InflectionOption {
	return func(in *Inflection) {
		in.Lower, in.Upper = lower, upper
	}
}

// WithLower sets only the lower domain bound.
func WithLower(lower float64) InflectionOption {
	return func(in *Inflection) {
		in.Lower = lower
	}
}

// WithUpper sets only the upper domain bound.
func WithUpper(upper float64) InflectionOption {
	return func(in *Inflection) {
		in.Upper = upper
	}
}

// NewInflection builds the curve. A lower bound at or above the pivot falls
// back to pivot-1 and an upper bound at or below it to pivot+1.
func NewInflection(pivot Point, trend Trend, opts ...InflectionOption) (Inflection, error) {
	in := Inflection{
		Pivot: pivot,
		Min:   types.MinScore,
		Max:   types.MaxScore,
		Trend: trend,
		Lower: 0,
		Upper: pivot.X + 1,
	}
	for _, opt := range opts {
		opt(&in)
	}

	for _, v := range []float64{pivot.X, pivot.Y, in.Min, in.Max, in.Lower, in.Upper} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Inflection{}, fmt.Errorf("%w: parameters must be finite", ErrInvalidInflection)
		}
	}
	if in.Min > in.Max {
		return Inflection{}, fmt.Errorf("%w: min score %g exceeds max score %g", ErrInvalidInflection, in.Min, in.Max)
	}
	if in.Lower >= pivot.X {
		in.Lower = pivot.X - 1
	}
	if in.Upper <= pivot.X {
		in.Upper = pivot.X + 1
	}

	start, end := in.Max, in.Min
	if trend == Increasing {
		start, end = in.Min, in.Max
	}
	in.before = lineThrough(Point{X: in.Lower, Y: start}, pivot)
	in.after = lineThrough(pivot, Point{X: in.Upper, Y: end})
	return in, nil
}

// Score evaluates the curve at x, clamps to [Min, Max] and rounds to digits.
func (in Inflection) Score(x float64, digits int) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	l := in.after
	if x < in.Pivot.X {
		l = in.before
	}
	return Round(Clamp(l.at(x), in.Min, in.Max), digits)
}

// Scorer binds the curve to a precision.
func (in Inflection) Scorer(digits int) Scorer {
	return ScorerFunc(func(x float64) (float64, bool) {
		if math.IsNaN(x) {
			return math.NaN(), false
		}
		return in.Score(x, digits), true
	})
}

func (in Inflection) String() string {
	return fmt.Sprintf("inflection(pivot=(%g, %g), scores=[%g, %g], %s, domain=[%g, %g])",
		in.Pivot.X, in.Pivot.Y, in.Min, in.Max, in.Trend, in.Lower, in.Upper)
}
