package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var (
	ErrInvalidCalibration = fmt.Errorf("%w: invalid calibration", types.ErrValidation)
	ErrMutualExclusion    = fmt.Errorf("%w: exactly one of index and percentage above must be set", types.ErrValidation)
	ErrUnknownCalibration = fmt.Errorf("%w: unknown calibration", types.ErrLookup)
)

// LinearIndex is the line through two calibration points, used to turn a
// consumption index into a score.
type LinearIndex struct {
	A, B Point
	l    line
}

// NewLinearIndex derives slope and intercept from two points with distinct X.
func NewLinearIndex(a, b Point) (LinearIndex, error) {
	if a.X == b.X || math.IsNaN(a.X) || math.IsNaN(b.X) || math.IsNaN(a.Y) || math.IsNaN(b.Y) {
		return LinearIndex{}, fmt.Errorf("%w: points (%g, %g) and (%g, %g)", ErrInvalidCalibration, a.X, a.Y, b.X, b.Y)
	}
	return LinearIndex{A: a, B: b, l: lineThrough(a, b)}, nil
}

// Slope returns the line's slope.
func (li LinearIndex) Slope() float64 { return li.l.slope }

// Intercept returns the line's intercept.
func (li LinearIndex) Intercept() float64 { return li.l.intercept }

// Value evaluates the line at x without clamping or rounding.
func (li LinearIndex) Value(x float64) float64 {
	return li.l.at(x)
}

type indexSettings struct {
	floor, ceiling float64
	digits         int
}

// IndexOption customizes LinearIndex.Score.
type IndexOption func(*indexSettings)

// WithBounds clamps to [floor, ceiling] instead of [0, 10].
func WithBounds(floor, ceiling float64) IndexOption {
	return func(s *indexSettings) {
		s.floor, s.ceiling = floor, ceiling
	}
}

// WithPrecision rounds to digits decimals (default 2, NoRounding disables).
func WithPrecision(digits int) IndexOption {
	return func(s *indexSettings) {
		s.digits = digits
	}
}

// Score evaluates the line at index, clamps and rounds.
func (li LinearIndex) Score(index float64, opts ...IndexOption) float64 {
	s := indexSettings{floor: types.MinScore, ceiling: types.MaxScore, digits: DefaultPrecision}
	for _, opt := range opts {
		opt(&s)
	}
	if math.IsNaN(index) {
		return math.NaN()
	}
	return Round(Clamp(li.Value(index), s.floor, s.ceiling), s.digits)
}

// Scorer binds the index line to score options.
func (li LinearIndex) Scorer(opts ...IndexOption) Scorer {
	return ScorerFunc(func(index float64) (float64, bool) {
		if math.IsNaN(index) {
			return math.NaN(), false
		}
		return li.Score(index, opts...), true
	})
}

// PercentageAbove converts an index to the percentage above the ideal
// consumption. Indices below 1 are at or under the ideal and give 0.
func PercentageAbove(index float64) float64 {
	if index < 1 {
		return 0
	}
	return (index - 1) * 100
}

// IndexFromPercentage converts a percentage above ideal back to an index.
func IndexFromPercentage(pct float64) float64 {
	return pct/100 + 1
}

// Reading is a consumption observation given either as an index or as the
// percentage above ideal, never both.
type Reading struct {
	index *float64
	pct   *float64
}

// NewReading requires exactly one of index and pct.
func NewReading(index, pct *float64) (Reading, error) {
	if (index == nil) == (pct == nil) {
		return Reading{}, ErrMutualExclusion
	}
	r := Reading{}
	if index != nil {
		v := *index
		r.index = &v
	} else {
		v := *pct
		r.pct = &v
	}
	return r, nil
}

// Index returns the reading as an index.
func (r Reading) Index() float64 {
	if r.index != nil {
		return *r.index
	}
	if r.pct != nil {
		return IndexFromPercentage(*r.pct)
	}
	return math.NaN()
}

// PercentageAbove returns the reading as a percentage above ideal.
func (r Reading) PercentageAbove() float64 {
	if r.pct != nil {
		return *r.pct
	}
	if r.index != nil {
		return PercentageAbove(*r.index)
	}
	return math.NaN()
}

// Calibration names a pair of calibration points for one metric kind.
type Calibration struct {
	Name        string
	Description string
	A, B        Point
}

// Index builds the LinearIndex for the calibration.
func (c Calibration) Index() (LinearIndex, error) {
	return NewLinearIndex(c.A, c.B)
}

// DefaultCalibrations holds the shipped consumption index calibrations.
var DefaultCalibrations = map[string]Calibration{
	"ica": {
		Name:        "ica",
		Description: "water consumption index",
		A:           Point{X: 1.0, Y: 9.0},
		B:           Point{X: 1.3, Y: 7.0},
	},
	"ice": {
		Name:        "ice",
		Description: "energy consumption index",
		A:           Point{X: 1.0, Y: 9.0},
		B:           Point{X: 1.3, Y: 7.0},
	},
}

// LookupCalibration returns the named default calibration.
func LookupCalibration(name string) (Calibration, error) {
	c, ok := DefaultCalibrations[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(DefaultCalibrations))
		for n := range DefaultCalibrations {
			names = append(names, n)
		}
		sort.Strings(names)
		return Calibration{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCalibration, name, strings.Join(names, ", "))
	}
	return c, nil
}
