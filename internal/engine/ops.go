package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dotcommander/farol/internal/normalize"
	"github.com/dotcommander/farol/internal/scoring"
	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
	"github.com/dotcommander/farol/internal/weights"
)

// Default column names written by the operations.
const (
	DefaultScoreColumn    = "score"
	DefaultCountColumn    = "count"
	DefaultWeightedColumn = "weighted"
)

// Normalize rescales column with the named strategy into result.
func Normalize(t table.Table, column, strategy string, dir types.Direction, result string) (table.Table, error) {
	fn, err := normalize.Lookup(strategy)
	if err != nil {
		return table.Table{}, err
	}
	if !t.HasColumn(column) {
		return table.Table{}, fmt.Errorf("%w: %q", table.ErrMissingColumn, column)
	}
	if result == "" {
		result = DefaultScoreColumn
	}

	values := t.Floats(column)
	if normalize.UsesSpread(strategy) {
		if err := normalize.CheckSpread(values); err != nil {
			slog.Warn("normalization input", "column", column, "strategy", strategy, "error", err)
		}
	}

	scores := fn(values, dir)
	if scores == nil {
		scores = nanSlice(len(values))
	}
	return t.WithFloats(result, scores)
}

// ScoreColumn applies metric to column (the metric's own column when empty)
// and writes the score into result. When statusColumn is set the score is
// also classified into it. Values outside every range get an empty score.
func ScoreColumn(t table.Table, metric Metric, column, result, statusColumn string) (table.Table, error) {
	if column == "" {
		column = metric.Column
	}
	if column == "" {
		return table.Table{}, fmt.Errorf("%w: metric %s has no column, pass one", ErrInvalidMetric, metric.Name)
	}
	if !t.HasColumn(column) {
		return table.Table{}, fmt.Errorf("%w: %q", table.ErrMissingColumn, column)
	}
	if result == "" {
		result = DefaultScoreColumn
	}

	values := t.Floats(column)
	scores := scoring.ScoreAll(metric.Scorer, values)

	unscored := 0
	for i, s := range scores {
		if math.IsNaN(s) && !math.IsNaN(values[i]) {
			unscored++
		}
	}
	if unscored > 0 {
		slog.Warn("values without a score", "metric", metric.Name, "column", column, "count", unscored)
	}

	out, err := t.WithFloats(result, scores)
	if err != nil {
		return table.Table{}, err
	}
	if statusColumn == "" {
		return out, nil
	}
	return withStatus(out, statusColumn, scores)
}

// WeighOptions configures Weigh.
type WeighOptions struct {
	// GroupKeys, when set, first counts the records per key combination.
	// The count becomes the value that is weighted.
	GroupKeys []string
	// ValueColumn is weighted directly when GroupKeys is empty.
	ValueColumn string
	// Entity, when set, averages the weighted values per entity before
	// normalizing.
	Entity []string
	// Strategy names the normalizer (default minmax).
	Strategy  string
	Direction types.Direction

	ResultColumn string
	StatusColumn string
}

// Weigh runs the weighting pipeline: optional size grouping, row-wise
// weights, optional mean grouping by entity, normalization and status. Rows
// whose value cannot be weighted are logged and contribute nothing.
func Weigh(t table.Table, model weights.Model, opts WeighOptions) (table.Table, error) {
	result := opts.ResultColumn
	if result == "" {
		result = DefaultScoreColumn
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = "minmax"
	}

	valueCol := opts.ValueColumn
	if len(opts.GroupKeys) > 0 {
		grouped, err := table.GroupBy(t, opts.GroupKeys, table.AggSize, "", DefaultCountColumn)
		if err != nil {
			return table.Table{}, err
		}
		t, valueCol = grouped, DefaultCountColumn
	}
	if valueCol == "" {
		return table.Table{}, fmt.Errorf("%w: weighing needs a value column or group keys", types.ErrValidation)
	}
	if !t.HasColumn(valueCol) {
		return table.Table{}, fmt.Errorf("%w: %q", table.ErrMissingColumn, valueCol)
	}

	weighted := make([]float64, t.Len())
	skipped := 0
	for i, rec := range t.Rows {
		v, err := model.ApplyRow(rec, valueCol)
		if err != nil {
			if !errors.Is(err, types.ErrLookup) {
				return table.Table{}, err
			}
			slog.Warn("row not weighted", "row", i+1, "error", err)
			skipped++
		}
		weighted[i] = v
	}
	if skipped > 0 {
		slog.Info("weighting finished with skipped rows", "rows", t.Len(), "skipped", skipped)
	}

	weightedCol := DefaultWeightedColumn
	t, err := t.WithFloats(weightedCol, weighted)
	if err != nil {
		return table.Table{}, err
	}

	if len(opts.Entity) > 0 {
		if t, err = table.GroupBy(t, opts.Entity, table.AggMean, weightedCol, weightedCol); err != nil {
			return table.Table{}, err
		}
	}

	out, err := Normalize(t, weightedCol, strategy, opts.Direction, result)
	if err != nil {
		return table.Table{}, err
	}
	if opts.StatusColumn == "" {
		return out, nil
	}
	return withStatus(out, opts.StatusColumn, out.Floats(result))
}

// Classify writes the status of every score in scoreColumn into statusColumn.
func Classify(t table.Table, scoreColumn, statusColumn string) (table.Table, error) {
	if !t.HasColumn(scoreColumn) {
		return table.Table{}, fmt.Errorf("%w: %q", table.ErrMissingColumn, scoreColumn)
	}
	return withStatus(t, statusColumn, t.Floats(scoreColumn))
}

func withStatus(t table.Table, column string, scores []float64) (table.Table, error) {
	statuses := scoring.ClassifyAll(scores)
	cells := make([]any, len(statuses))
	for i, s := range statuses {
		if s != types.StatusNone {
			cells[i] = string(s)
		}
	}
	return t.WithColumn(column, cells)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
