// Package engine turns a model file into scorers and weights and runs the
// table-level scoring operations: normalization, metric scoring, weighting and
// the composite.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/scoring"
	"github.com/dotcommander/farol/internal/types"
	"github.com/dotcommander/farol/internal/weights"
)

// Metric kinds accepted in a model file.
const (
	KindRange      = "range"
	KindInflection = "inflection"
	KindIndex      = "index"
)

// Index inputs: the column holds the index itself or the percentage above ideal.
const (
	InputIndex      = "index"
	InputPercentage = "percentage"
)

var (
	ErrUnknownMetric = fmt.Errorf("%w: unknown metric", types.ErrLookup)
	ErrInvalidMetric = fmt.Errorf("%w: invalid metric", types.ErrValidation)
)

// Metric is a compiled metric definition.
type Metric struct {
	Name   string
	Kind   string
	Column string // default input column, may be empty
	Digits int
	Scorer scoring.Scorer

	desc string
}

func (m Metric) String() string { return m.desc }

// Compiled is a model file ready to score with.
type Compiled struct {
	Path    string
	Metrics map[string]Metric
	Weights weights.Model
	// Composite is nil when the model declares none.
	Composite *config.CompositeSpec
}

// Metric returns the named metric.
func (c *Compiled) Metric(name string) (Metric, error) {
	m, ok := c.Metrics[name]
	if !ok {
		if len(c.Metrics) == 0 {
			return Metric{}, fmt.Errorf("%w: %q (model declares no metrics)", ErrUnknownMetric, name)
		}
		return Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return m, nil
}

// Compile builds every metric and weight dimension of m. precision is the
// default rounding for metrics that do not set their own.
func Compile(m *config.Model, precision int) (*Compiled, error) {
	c := &Compiled{
		Path:      m.Path,
		Metrics:   make(map[string]Metric, len(m.Metrics)),
		Composite: m.Composite,
	}

	for _, name := range m.MetricNames() {
		metric, err := compileMetric(name, m.Metrics[name], precision)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		slog.Debug("metric compiled", "metric", name, "scorer", metric.String())
		c.Metrics[name] = metric
	}

	wm := weights.Model{}
	for _, name := range m.WeightNames() {
		spec := m.Weights[name]
		var err error
		if len(spec.Decay) > 0 {
			wm, err = wm.DeclareDecay(name, spec.Decay)
		} else {
			wm, err = wm.Declare(name, spec.Categories)
		}
		if err != nil {
			return nil, fmt.Errorf("weights %s: %w", name, err)
		}
		for label, w := range spec.Categories {
			slog.Debug("weight declared", "dimension", name, "category", label, "weight", w)
		}
		slog.Info("weight dimension declared", "dimension", name,
			"categories", len(spec.Categories)+len(spec.Decay), "decay", len(spec.Decay) > 0)
	}
	c.Weights = wm

	if comp := m.Composite; comp != nil {
		ws := make([]float64, len(comp.Categories))
		for i, cat := range comp.Categories {
			ws[i] = cat.Weight
		}
		if err := weights.ValidatePartition(ws); err != nil {
			return nil, fmt.Errorf("composite weights: %w", err)
		}
	}
	return c, nil
}

func compileMetric(name string, spec config.MetricSpec, precision int) (Metric, error) {
	digits := precision
	if spec.Precision != nil {
		digits = *spec.Precision
	}
	metric := Metric{Name: name, Kind: strings.ToLower(spec.Kind), Column: spec.Column, Digits: digits}

	switch metric.Kind {
	case KindRange:
		return compileRange(metric, spec)
	case KindInflection:
		return compileInflection(metric, spec)
	case KindIndex:
		return compileIndex(metric, spec)
	default:
		return Metric{}, fmt.Errorf("%w: unknown kind %q (want range, inflection or index)", ErrInvalidMetric, spec.Kind)
	}
}

func compileRange(metric Metric, spec config.MetricSpec) (Metric, error) {
	mode := scoring.HigherIsWorse
	if spec.Mode != "" {
		var err error
		if mode, err = scoring.ParseRangeMode(spec.Mode); err != nil {
			return Metric{}, err
		}
	}

	ranges := make([]scoring.Range, 0, len(spec.Ranges))
	for _, rs := range spec.Ranges {
		r, err := scoring.NewRange(rs.Lower, rs.Upper, rs.ScoreMin, rs.ScoreMax)
		if err != nil {
			return Metric{}, err
		}
		ranges = append(ranges, r)
	}
	rt, err := scoring.NewRangeTable(ranges...)
	if err != nil {
		return Metric{}, err
	}
	for _, o := range rt.Overlaps() {
		slog.Warn("overlapping ranges, the lower one wins",
			"metric", metric.Name,
			"first", fmt.Sprintf("[%g, %g]", o.First.Lower, o.First.Upper),
			"second", fmt.Sprintf("[%g, %g]", o.Second.Lower, o.Second.Upper))
	}

	metric.Scorer = rt.Scorer(mode, metric.Digits)
	bounds := make([]string, 0, len(ranges))
	for _, r := range rt.Ranges() {
		bounds = append(bounds, fmt.Sprintf("[%g, %g]→%g-%g", r.Lower, r.Upper, r.ScoreMin, r.ScoreMax))
	}
	metric.desc = fmt.Sprintf("range(%s, %s)", mode, strings.Join(bounds, " "))
	return metric, nil
}

func compileInflection(metric Metric, spec config.MetricSpec) (Metric, error) {
	if spec.Pivot == nil {
		return Metric{}, fmt.Errorf("%w: inflection needs a pivot", ErrInvalidMetric)
	}
	trend := scoring.Decreasing
	if spec.Trend != "" {
		var err error
		if trend, err = scoring.ParseTrend(spec.Trend); err != nil {
			return Metric{}, err
		}
	}

	var opts []scoring.InflectionOption
	if spec.Lower != nil {
		opts = append(opts, scoring.WithLower(*spec.Lower))
	}
	if spec.Upper != nil {
		opts = append(opts, scoring.WithUpper(*spec.Upper))
	}
	if spec.MinScore != nil || spec.MaxScore != nil {
		lo, hi := types.MinScore, types.MaxScore
		if spec.MinScore != nil {
			lo = *spec.MinScore
		}
		if spec.MaxScore != nil {
			hi = *spec.MaxScore
		}
		opts = append(opts, scoring.WithScoreBounds(lo, hi))
	}

	in, err := scoring.NewInflection(scoring.Point{X: spec.Pivot.X, Y: spec.Pivot.Y}, trend, opts...)
	if err != nil {
		return Metric{}, err
	}
	metric.Scorer = in.Scorer(metric.Digits)
	metric.desc = in.String()
	return metric, nil
}

func compileIndex(metric Metric, spec config.MetricSpec) (Metric, error) {
	var (
		li  scoring.LinearIndex
		err error
	)
	switch {
	case spec.Calibration != "" && len(spec.Points) > 0:
		return Metric{}, fmt.Errorf("%w: set either calibration or points, not both", ErrInvalidMetric)
	case spec.Calibration != "":
		cal, lerr := scoring.LookupCalibration(spec.Calibration)
		if lerr != nil {
			return Metric{}, lerr
		}
		li, err = cal.Index()
	case len(spec.Points) == 2:
		li, err = scoring.NewLinearIndex(
			scoring.Point{X: spec.Points[0].X, Y: spec.Points[0].Y},
			scoring.Point{X: spec.Points[1].X, Y: spec.Points[1].Y},
		)
	default:
		return Metric{}, fmt.Errorf("%w: index needs a calibration or exactly two points", ErrInvalidMetric)
	}
	if err != nil {
		return Metric{}, err
	}

	opts := []scoring.IndexOption{scoring.WithPrecision(metric.Digits)}
	if spec.Floor != nil || spec.Ceiling != nil {
		lo, hi := types.MinScore, types.MaxScore
		if spec.Floor != nil {
			lo = *spec.Floor
		}
		if spec.Ceiling != nil {
			hi = *spec.Ceiling
		}
		if lo > hi {
			return Metric{}, fmt.Errorf("%w: floor %g exceeds ceiling %g", ErrInvalidMetric, lo, hi)
		}
		opts = append(opts, scoring.WithBounds(lo, hi))
	}

	input := strings.ToLower(spec.Input)
	scorer := li.Scorer(opts...)
	switch input {
	case "", InputIndex:
		input = InputIndex
	case InputPercentage:
		scorer = percentageScorer(scorer)
	default:
		return Metric{}, fmt.Errorf("%w: unknown index input %q (want index or percentage)", ErrInvalidMetric, spec.Input)
	}

	metric.Scorer = scorer
	metric.desc = fmt.Sprintf("index(y = %.4g·x + %.4g, input=%s)", li.Slope(), li.Intercept(), input)
	return metric, nil
}

// percentageScorer reads values as percentages above ideal.
func percentageScorer(s scoring.Scorer) scoring.Scorer {
	return scoring.ScorerFunc(func(pct float64) (float64, bool) {
		if math.IsNaN(pct) {
			return math.NaN(), false
		}
		r, err := scoring.NewReading(nil, &pct)
		if err != nil {
			return math.NaN(), false
		}
		return s.Score(r.Index())
	})
}
