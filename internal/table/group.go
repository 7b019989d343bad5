package table

import (
	"fmt"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var ErrInvalidAggregation = fmt.Errorf("%w: invalid aggregation", types.ErrValidation)

// Aggregation selects how GroupBy reduces each group.
type Aggregation string

const (
	AggSize Aggregation = "size"
	AggSum  Aggregation = "sum"
	AggMean Aggregation = "mean"
)

// ParseAggregation parses size, sum or mean.
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case AggSize, AggSum, AggMean:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q (want size, sum or mean)", ErrInvalidAggregation, s)
	}
}

type group struct {
	keys  []any
	count int
	sum   float64
	n     int
}

// GroupBy groups rows by the key columns and reduces each group into
// resultColumn. Size counts rows; sum and mean reduce valueColumn, skipping
// missing values (an all-missing group sums to 0 and averages to nil).
// Rows missing any key value are dropped. Groups keep first-appearance order.
func GroupBy(t Table, keys []string, agg Aggregation, valueColumn, resultColumn string) (Table, error) {
	if len(keys) == 0 {
		return Table{}, fmt.Errorf("%w: no group keys", ErrInvalidAggregation)
	}
	if _, err := ParseAggregation(string(agg)); err != nil {
		return Table{}, err
	}
	for _, k := range keys {
		if !t.HasColumn(k) {
			return Table{}, fmt.Errorf("%w: group key %q", ErrMissingColumn, k)
		}
	}
	if agg != AggSize {
		if valueColumn == "" {
			return Table{}, fmt.Errorf("%w: %s needs a value column", ErrInvalidAggregation, agg)
		}
		if !t.HasColumn(valueColumn) {
			return Table{}, fmt.Errorf("%w: value column %q", ErrMissingColumn, valueColumn)
		}
	}

	var order []string
	groups := make(map[string]*group)

rows:
	for _, r := range t.Rows {
		parts := make([]string, len(keys))
		vals := make([]any, len(keys))
		for i, k := range keys {
			if !r.Has(k) {
				continue rows
			}
			vals[i] = r[k]
			parts[i] = Key(r[k])
		}
		id := strings.Join(parts, "\x1f")
		g, ok := groups[id]
		if !ok {
			g = &group{keys: vals}
			groups[id] = g
			order = append(order, id)
		}
		g.count++
		if agg != AggSize {
			if f, ok := r.Float(valueColumn); ok {
				g.sum += f
				g.n++
			}
		}
	}

	rowsOut := make([]Record, 0, len(order))
	for _, id := range order {
		g := groups[id]
		rec := make(Record, len(keys)+1)
		for i, k := range keys {
			rec[k] = g.keys[i]
		}
		switch agg {
		case AggSize:
			rec[resultColumn] = float64(g.count)
		case AggSum:
			rec[resultColumn] = g.sum
		case AggMean:
			if g.n == 0 {
				rec[resultColumn] = nil
			} else {
				rec[resultColumn] = g.sum / float64(g.n)
			}
		}
		rowsOut = append(rowsOut, rec)
	}

	cols := append(append([]string(nil), keys...), resultColumn)
	return Table{Columns: cols, Rows: rowsOut}, nil
}
