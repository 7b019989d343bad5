// Package table holds the in-memory record tables the scoring core consumes and
// produces. Tables are treated as immutable values: every transformation returns
// a new Table and leaves its input untouched.
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dotcommander/farol/internal/types"
)

var (
	ErrMissingColumn  = fmt.Errorf("%w: missing column", types.ErrLookup)
	ErrLengthMismatch = fmt.Errorf("%w: column length does not match row count", types.ErrValidation)
)

// Record is a single row keyed by column name.
type Record map[string]any

// Has reports whether the record carries a non-nil value for col.
func (r Record) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// Float returns the numeric value of col. Numeric strings are parsed; empty
// strings, NaN, nil and non-numeric values report false.
func (r Record) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok {
		return math.NaN(), false
	}
	return ToFloat(v)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToFloat converts a cell value to float64.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return math.NaN(), false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case uint32:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return math.NaN(), false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), false
		}
		f = parsed
	default:
		return math.NaN(), false
	}
	if math.IsNaN(f) {
		return f, false
	}
	return f, true
}

// Key returns the canonical string form of a cell used for joins, grouping and
// category lookups. Booleans become "true"/"false"; whole floats drop their
// fractional part so 7 and 7.0 join.
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Table is an ordered set of columns over a slice of records.
type Table struct {
	Columns []string
	Rows    []Record
}

// New builds a table. Columns present in rows but missing from columns are
// appended in first-seen order so nothing is silently dropped.
func New(columns []string, rows []Record) Table {
	cols := append([]string(nil), columns...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return Table{Columns: cols, Rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is a declared column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone deep-copies the table's column list and records.
func (t Table) Clone() Table {
	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Floats returns the numeric values of col, NaN where a value is missing or
// not numeric.
func (t Table) Floats(col string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		f, ok := r.Float(col)
		if !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// Values returns the raw cells of col.
func (t Table) Values(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// WithColumn returns a copy of the table with name set to values, one per row.
func (t Table) WithColumn(name string, values []any) (Table, error) {
	if len(values) != len(t.Rows) {
		return Table{}, fmt.Errorf("%w: %s has %d values for %d rows", ErrLengthMismatch, name, len(values), len(t.Rows))
	}
	out := t.Clone()
	if !out.HasColumn(name) {
		out.Columns = append(out.Columns, name)
	}
	for i := range out.Rows {
		out.Rows[i][name] = values[i]
	}
	return out, nil
}

// WithFloats is WithColumn for numeric results. NaN is stored as nil so it
// renders as an empty cell.
func (t Table) WithFloats(name string, values []float64) (Table, error) {
	cells := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		cells[i] = v
	}
	return t.WithColumn(name, cells)
}
