// Package weights holds the category weights applied to raw metric values and
// the composite weights used to combine category scores.
//
// A Model is an immutable value. Declare and DeclareDecay return a new Model
// and never modify the receiver, so a validated Model can be shared freely.
package weights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
)

// Tolerance is the allowed deviation of a composite weight sum from 1.0.
const Tolerance = 1e-9

var (
	ErrInvalidWeight = fmt.Errorf("%w: invalid weight", types.ErrValidation)
	ErrSumNotOne     = fmt.Errorf("%w: weights must sum to 1.0", types.ErrValidation)
	ErrNotNumeric    = fmt.Errorf("%w: value is not numeric", types.ErrLookup)
)

// DecayMode is the time-decay token of a decay dimension.
type DecayMode string

const (
	DecayLinear      DecayMode = "linear"
	DecayExponential DecayMode = "exponential"
)

// ParseDecayMode parses linear or exponential, case-insensitively.
func ParseDecayMode(s string) (DecayMode, error) {
	switch m := DecayMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DecayLinear, DecayExponential:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown decay mode %q (want linear or exponential)", ErrInvalidWeight, s)
	}
}

// Dimension is one weighting axis, named after the record column holding the
// category. Exactly one of Weights and Decay is set.
type Dimension struct {
	Name    string
	Weights map[string]float64
	Decay   map[string]DecayMode
}

// IsDecay reports whether the dimension carries time-decay tokens instead of
// multiplicative weights.
func (d Dimension) IsDecay() bool {
	return d.Decay != nil
}

// Model is an ordered set of dimensions.
type Model struct {
	dims []Dimension
}

// Declare returns a copy of m with the named dimension set to the given
// category weights. Every weight must lie in [0,1]. Redeclaring a dimension
// replaces it.
func (m Model) Declare(name string, categories map[string]float64) (Model, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return m, fmt.Errorf("%w: dimension name is empty", ErrInvalidWeight)
	}
	ws := make(map[string]float64, len(categories))
	seen := make(map[string]string, len(categories))
	for _, label := range sortedLabels(categories) {
		w := categories[label]
		if err := checkWeight(w); err != nil {
			return m, fmt.Errorf("dimension %q category %q: %w", name, label, err)
		}
		key := canonicalLabel(label)
		if err := claimLabel(seen, name, label, key); err != nil {
			return m, err
		}
		ws[key] = w
	}
	return m.with(Dimension{Name: name, Weights: ws}), nil
}

// DeclareDecay returns a copy of m with a time-decay dimension. Values must be
// decay tokens.
func (m Model) DeclareDecay(name string, categories map[string]string) (Model, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return m, fmt.Errorf("%w: dimension name is empty", ErrInvalidWeight)
	}
	modes := make(map[string]DecayMode, len(categories))
	seen := make(map[string]string, len(categories))
	for _, label := range sortedLabels(categories) {
		mode, err := ParseDecayMode(categories[label])
		if err != nil {
			return m, fmt.Errorf("dimension %q category %q: %w", name, label, err)
		}
		key := canonicalLabel(label)
		if err := claimLabel(seen, name, label, key); err != nil {
			return m, err
		}
		modes[key] = mode
	}
	return m.with(Dimension{Name: name, Decay: modes}), nil
}

func (m Model) with(d Dimension) Model {
	dims := make([]Dimension, 0, len(m.dims)+1)
	replaced := false
	for _, existing := range m.dims {
		if existing.Name == d.Name {
			dims = append(dims, d)
			replaced = true
			continue
		}
		dims = append(dims, existing)
	}
	if !replaced {
		dims = append(dims, d)
	}
	return Model{dims: dims}
}

// Dimensions returns the declared dimensions in declaration order.
func (m Model) Dimensions() []Dimension {
	return append([]Dimension(nil), m.dims...)
}

// Len returns the number of declared dimensions.
func (m Model) Len() int {
	return len(m.dims)
}

// Weight returns the weight of category in the named dimension. Unknown
// categories weigh 0. ok is false for unknown or decay dimensions.
func (m Model) Weight(dimension string, category any) (float64, bool) {
	for _, d := range m.dims {
		if d.Name != dimension || d.IsDecay() {
			continue
		}
		return d.Weights[canonicalLabel(table.Key(category))], true
	}
	return 0, false
}

// ApplyRow weights the value in valueColumn by the product of the record's
// category weights over every non-decay dimension whose column the record
// carries. A record that matches no dimension keeps its value. Decay
// dimensions are not applied.
func (m Model) ApplyRow(r table.Record, valueColumn string) (float64, error) {
	raw, ok := r[valueColumn]
	if !ok || raw == nil {
		return math.NaN(), fmt.Errorf("%w: %q", table.ErrMissingColumn, valueColumn)
	}
	v, ok := table.ToFloat(raw)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s=%v", ErrNotNumeric, valueColumn, raw)
	}

	factor := 1.0
	for _, d := range m.dims {
		if d.IsDecay() || !r.Has(d.Name) {
			continue
		}
		factor *= d.Weights[canonicalLabel(table.Key(r[d.Name]))]
	}
	return v * factor, nil
}

// ValidatePartition checks composite weights: each in [0,1] and summing to 1.0
// within Tolerance.
func ValidatePartition(ws []float64) error {
	if len(ws) == 0 {
		return fmt.Errorf("%w: no weights", ErrSumNotOne)
	}
	var sum float64
	for i, w := range ws {
		if err := checkWeight(w); err != nil {
			return fmt.Errorf("weight %d: %w", i, err)
		}
		sum += w
	}
	if math.Abs(sum-1) > Tolerance {
		return fmt.Errorf("%w: got %g", ErrSumNotOne, sum)
	}
	return nil
}

func checkWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("%w: %g is outside [0,1]", ErrInvalidWeight, w)
	}
	return nil
}

// claimLabel records that label maps to key and rejects a second label folding
// onto the same key.
func claimLabel(seen map[string]string, dimension, label, key string) error {
	if prev, ok := seen[key]; ok {
		return fmt.Errorf("%w: dimension %q categories %q and %q name the same category", ErrInvalidWeight, dimension, prev, label)
	}
	seen[key] = label
	return nil
}

func sortedLabels[V any](categories map[string]V) []string {
	labels := make([]string, 0, len(categories))
	for label := range categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// canonicalLabel folds boolean spellings so a YAML "True" and a CSV "true"
// select the same weight.
func canonicalLabel(label string) string {
	label = strings.TrimSpace(label)
	switch strings.ToLower(label) {
	case "true":
		return "true"
	case "false":
		return "false"
	}
	return label
}
