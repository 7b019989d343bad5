package normalize

import (
	"math"
	"sort"
)

// present returns the non-NaN values of vs, sorted ascending.
func present(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Quantile returns the p-quantile (0 <= p <= 1) of sorted using linear
// interpolation between the two nearest order statistics. sorted must be
// non-empty and ascending.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Spread summarizes the location and dispersion of a sample.
type Spread struct {
	Min    float64
	Max    float64
	Q1     float64
	Median float64
	Q3     float64
	Count  int
}

// IQR returns Q3 - Q1.
func (s Spread) IQR() float64 {
	return s.Q3 - s.Q1
}

// Fences returns the Tukey outlier fences Q1-1.5·IQR and Q3+1.5·IQR.
func (s Spread) Fences() (lower, upper float64) {
	iqr := s.IQR()
	return s.Q1 - 1.5*iqr, s.Q3 + 1.5*iqr
}

// Describe computes the Spread of values, ignoring NaN. ok is false when no
// value is present.
func Describe(values []float64) (Spread, bool) {
	sorted := present(values)
	if len(sorted) == 0 {
		return Spread{}, false
	}
	return Spread{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Count:  len(sorted),
	}, true
}
