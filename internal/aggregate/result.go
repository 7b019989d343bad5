package aggregate

import (
	"math"

	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
)

// Column name suffixes.
const (
	ScoreSuffix  = "_score"
	WeightSuffix = "_weight"
	StatusSuffix = "_status"
)

// ScoreColumn returns the composite score column name.
func (r Result) ScoreColumn() string { return r.Name + ScoreSuffix }

// StatusColumn returns the composite status column name.
func (r Result) StatusColumn() string { return r.Name + StatusSuffix }

// Columns returns the output columns: key, carry columns, then score, weight
// and status per category, then the composite score and status.
func (r Result) Columns() []string {
	cols := make([]string, 0, 1+len(r.Carry)+3*len(r.Labels)+2)
	cols = append(cols, r.Key)
	cols = append(cols, r.Carry...)
	for _, l := range r.Labels {
		cols = append(cols, l+ScoreSuffix, l+WeightSuffix, l+StatusSuffix)
	}
	return append(cols, r.ScoreColumn(), r.StatusColumn())
}

// Table renders the result. Missing scores and weights become empty cells.
func (r Result) Table() table.Table {
	rows := make([]table.Record, len(r.Rows))
	for i, row := range r.Rows {
		rec := table.Record{r.Key: row.Key}
		for _, col := range r.Carry {
			rec[col] = row.Carry[col]
		}
		for ci, l := range r.Labels {
			rec[l+ScoreSuffix] = cell(row.Scores[ci])
			rec[l+WeightSuffix] = cell(row.Weights[ci])
			rec[l+StatusSuffix] = statusCell(row.Statuses[ci])
		}
		rec[r.ScoreColumn()] = cell(row.Score)
		rec[r.StatusColumn()] = statusCell(row.Status)
		rows[i] = rec
	}
	return table.Table{Columns: r.Columns(), Rows: rows}
}

// StatusCounts tallies composite statuses.
func (r Result) StatusCounts() map[types.Status]int {
	counts := make(map[types.Status]int, 4)
	for _, row := range r.Rows {
		counts[row.Status]++
	}
	return counts
}

func cell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func statusCell(s types.Status) any {
	if s == types.StatusNone {
		return nil
	}
	return string(s)
}
