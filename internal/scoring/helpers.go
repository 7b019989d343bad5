package scoring

import "math"

// Rounding precision.
const (
	DefaultPrecision = 2
	NoRounding       = -1
)

// Round rounds v to digits decimal places, halves away from zero. A negative
// digits returns v unchanged.
func Round(v float64, digits int) float64 {
	if digits < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Point is an (x, score) pair.
type Point struct {
	X float64
	Y float64
}

// line is y = slope·x + intercept.
type line struct {
	slope     float64
	intercept float64
}

// lineThrough returns the line through a and b. a.X must differ from b.X.
func lineThrough(a, b Point) line {
	m := (b.Y - a.Y) / (b.X - a.X)
	return line{slope: m, intercept: a.Y - m*a.X}
}

func (l line) at(x float64) float64 {
	return l.slope*x + l.intercept
}
