// Package aggregate combines independently scored categories into one
// weighted composite score per record and classifies the result.
package aggregate

import (
	"fmt"
	"math"
	"strings"

	"github.com/dotcommander/farol/internal/scoring"
	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
	"github.com/dotcommander/farol/internal/weights"
)

// DefaultName prefixes the composite columns when Options.Name is empty.
const DefaultName = "composite"

var (
	ErrNoCategories = fmt.Errorf("%w: no categories to aggregate", types.ErrValidation)
	ErrBadCategory  = fmt.Errorf("%w: invalid category", types.ErrValidation)
	ErrDuplicateKey = fmt.Errorf("%w: duplicate record key", types.ErrValidation)
)

// Category is one scored input table. The aggregator reads it and never
// modifies it.
type Category struct {
	Label       string
	Table       table.Table
	KeyColumn   string // defaults to Options.Key
	ScoreColumn string
	// StatusColumn optionally names an input status, used only for records
	// whose score is missing. Scored records are always reclassified.
	StatusColumn string
	Weight       float64
}

// Options controls the join and the output column names.
type Options struct {
	Key   string
	Name  string
	Carry []string
}

// Row is one record of the composite.
type Row struct {
	Key      any
	Carry    map[string]any
	Scores   []float64 // NaN where the category has no score
	Weights  []float64 // NaN where the record is absent from the category
	Statuses []types.Status
	Score    float64
	Status   types.Status
}

// Result is the composite of a set of categories. Rows are in first-appearance
// order of their keys across the categories.
type Result struct {
	Name    string
	Key     string
	Labels  []string
	Carry   []string
	Rows    []Row
	Skipped int // input rows dropped for a missing key
}

// Aggregate outer-joins the categories on the record key and computes
// Σ(score·weight)/Σ(weight) over the categories each record actually has.
// Category weights must form a partition of 1.
func Aggregate(categories []Category, opts Options) (Result, error) {
	if len(categories) == 0 {
		return Result{}, ErrNoCategories
	}
	if strings.TrimSpace(opts.Key) == "" {
		return Result{}, fmt.Errorf("%w: no key column", ErrBadCategory)
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	ws := make([]float64, len(categories))
	labels := make([]string, len(categories))
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		if err := checkCategory(c, opts.Key); err != nil {
			return Result{}, err
		}
		if seen[c.Label] {
			return Result{}, fmt.Errorf("%w: label %q used twice", ErrBadCategory, c.Label)
		}
		seen[c.Label] = true
		labels[i] = c.Label
		ws[i] = c.Weight
	}
	if err := weights.ValidatePartition(ws); err != nil {
		return Result{}, fmt.Errorf("composite weights: %w", err)
	}

	res := Result{
		Name:   name,
		Key:    opts.Key,
		Labels: labels,
		Carry:  append([]string(nil), opts.Carry...),
	}
	index := make(map[string]int)

	for ci, c := range categories {
		keyCol := c.KeyColumn
		if keyCol == "" {
			keyCol = opts.Key
		}
		inCategory := make(map[string]bool)
		for _, rec := range c.Table.Rows {
			if !rec.Has(keyCol) {
				res.Skipped++
				continue
			}
			k := table.Key(rec[keyCol])
			if inCategory[k] {
				return Result{}, fmt.Errorf("%w: %s=%s in category %q", ErrDuplicateKey, keyCol, k, c.Label)
			}
			inCategory[k] = true

			ri, ok := index[k]
			if !ok {
				ri = len(res.Rows)
				index[k] = ri
				res.Rows = append(res.Rows, newRow(rec[keyCol], len(categories)))
			}
			row := &res.Rows[ri]
			fillCarry(row, rec, opts.Carry)

			score, hasScore := rec.Float(c.ScoreColumn)
			row.Weights[ci] = c.Weight
			if hasScore {
				row.Scores[ci] = score
				row.Statuses[ci] = scoring.Classify(score)
			} else if c.StatusColumn != "" && rec.Has(c.StatusColumn) {
				row.Statuses[ci] = types.Status(strings.ToLower(table.Key(rec[c.StatusColumn])))
			}
		}
	}

	for i := range res.Rows {
		row := &res.Rows[i]
		row.Score = composite(row.Scores, row.Weights)
		row.Status = scoring.Classify(row.Score)
	}
	return res, nil
}

func checkCategory(c Category, key string) error {
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("%w: empty label", ErrBadCategory)
	}
	if c.ScoreColumn == "" {
		return fmt.Errorf("%w: %q has no score column", ErrBadCategory, c.Label)
	}
	keyCol := c.KeyColumn
	if keyCol == "" {
		keyCol = key
	}
	if !c.Table.HasColumn(keyCol) {
		return fmt.Errorf("category %q: %w: %q", c.Label, table.ErrMissingColumn, keyCol)
	}
	if !c.Table.HasColumn(c.ScoreColumn) {
		return fmt.Errorf("category %q: %w: %q", c.Label, table.ErrMissingColumn, c.ScoreColumn)
	}
	return nil
}

func newRow(key any, n int) Row {
	row := Row{
		Key:      key,
		Scores:   make([]float64, n),
		Weights:  make([]float64, n),
		Statuses: make([]types.Status, n),
	}
	for i := 0; i < n; i++ {
		row.Scores[i] = math.NaN()
		row.Weights[i] = math.NaN()
	}
	return row
}

// fillCarry copies carry columns the row does not have yet, so the first
// table holding the key provides them.
func fillCarry(row *Row, rec table.Record, carry []string) {
	for _, col := range carry {
		if !rec.Has(col) {
			continue
		}
		if row.Carry == nil {
			row.Carry = make(map[string]any, len(carry))
		}
		if _, ok := row.Carry[col]; !ok {
			row.Carry[col] = rec[col]
		}
	}
}

// composite is the weighted mean over categories with both a score and a
// weight. NaN when there are none.
func composite(scores, ws []float64) float64 {
	var num, den float64
	for i, s := range scores {
		if math.IsNaN(s) || math.IsNaN(ws[i]) {
			continue
		}
		num += s * ws[i]
		den += ws[i]
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
