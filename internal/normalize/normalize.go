// Package normalize maps a column of raw metric values onto the 0-10 score
// scale. Every strategy is a pure function of its input and a direction;
// missing values are NaN and stay NaN in the output.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var (
	ErrNoValues         = fmt.Errorf("%w: no values present", types.ErrComputation)
	ErrDegenerateSpread = fmt.Errorf("%w: interquartile range is zero", types.ErrComputation)
	ErrUnknownStrategy  = fmt.Errorf("%w: unknown normalization strategy", types.ErrValidation)
)

// Func is a normalization strategy. It returns nil when every input value is
// missing.
type Func func(values []float64, dir types.Direction) []float64

// Invert flips a score on the 0-10 scale.
func Invert(score float64) float64 {
	return types.MaxScore - score
}

// orient applies the direction flip to a score computed high-is-good.
func orient(score float64, dir types.Direction) float64 {
	if dir == types.LowIsGood {
		return Invert(score)
	}
	return score
}

func clamp(v float64) float64 {
	return math.Max(types.MinScore, math.Min(types.MaxScore, v))
}

// allMissing reports whether values has no non-NaN entry.
func allMissing(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// MinMax rescales values linearly onto [0,10]. When every present value is
// equal the result is 10 for all of them, whatever the direction.
func MinMax(values []float64, dir types.Direction) []float64 {
	if allMissing(values) {
		return nil
	}
	s, _ := Describe(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = rescale(v, s.Min, s.Max, dir)
	}
	return out
}

func rescale(v, lo, hi float64, dir types.Direction) float64 {
	switch {
	case math.IsNaN(v):
		return math.NaN()
	case hi == lo:
		return types.MaxScore
	}
	t := (v - lo) / (hi - lo) * types.MaxScore
	return orient(t, dir)
}

// Robust scores each value by its distance from the median in units of the
// interquartile range, clamped to [0,10]. A zero IQR gives 10 for every value;
// use CheckSpread to detect that case beforehand.
func Robust(values []float64, dir types.Direction) []float64 {
	if allMissing(values) {
		return nil
	}
	s, _ := Describe(values)
	iqr := s.IQR()
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case iqr == 0:
			out[i] = types.MaxScore
		default:
			out[i] = orient(clamp((v-s.Median)/iqr*types.MaxScore), dir)
		}
	}
	return out
}

// OutlierAware pins values beyond the Tukey fences to the extreme scores and
// min-max rescales the remaining values among themselves. Outliers follow the
// same orientation as the interior: with HighIsGood an upper outlier scores 10
// and a lower outlier 0; LowIsGood reverses both.
func OutlierAware(values []float64, dir types.Direction) []float64 {
	if allMissing(values) {
		return nil
	}
	s, _ := Describe(values)
	lowFence, highFence := s.Fences()

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || v < lowFence || v > highFence {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case v < lowFence:
			out[i] = orient(types.MinScore, dir)
		case v > highFence:
			out[i] = orient(types.MaxScore, dir)
		default:
			out[i] = rescale(v, lo, hi, dir)
		}
	}
	return out
}

// CheckSpread reports inputs on which the IQR-based strategies degenerate.
func CheckSpread(values []float64) error {
	s, ok := Describe(values)
	if !ok {
		return ErrNoValues
	}
	if s.IQR() == 0 {
		return fmt.Errorf("%w (median %g over %d values)", ErrDegenerateSpread, s.Median, s.Count)
	}
	return nil
}

var strategies = map[string]Func{
	"minmax":        MinMax,
	"robust":        Robust,
	"outlier":       OutlierAware,
	"outlier-aware": OutlierAware,
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Func, error) {
	f, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// UsesSpread reports whether the named strategy depends on the interquartile
// range, so a zero spread changes its result.
func UsesSpread(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "robust", "outlier", "outlier-aware":
		return true
	}
	return false
}

// Names lists the registered strategy names.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
