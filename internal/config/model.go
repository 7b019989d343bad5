package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/farol/internal/cue"
	"github.com/dotcommander/farol/internal/types"
)

// ErrInvalidModel wraps schema violations in a model file.
var ErrInvalidModel = fmt.Errorf("%w: invalid model file", types.ErrValidation)

// Model is a parsed scoring model file.
type Model struct {
	Version   int                   `yaml:"version,omitempty"`
	Metrics   map[string]MetricSpec `yaml:"metrics,omitempty"`
	Weights   map[string]WeightSpec `yaml:"weights,omitempty"`
	Composite *CompositeSpec        `yaml:"composite,omitempty"`

	// Path is the file the model was read from.
	Path string `yaml:"-"`
}

// PointSpec is an (x, y) pair.
type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// RangeSpec is one row of a range table.
type RangeSpec struct {
	Lower    float64 `yaml:"lower"`
	Upper    float64 `yaml:"upper"`
	ScoreMin float64 `yaml:"score_min"`
	ScoreMax float64 `yaml:"score_max"`
}

// MetricSpec declares how one raw column is scored. Kind selects which of the
// remaining fields apply.
type MetricSpec struct {
	Kind      string `yaml:"kind"`
	Column    string `yaml:"column,omitempty"`
	Precision *int   `yaml:"precision,omitempty"`

	Mode   string      `yaml:"mode,omitempty"`
	Ranges []RangeSpec `yaml:"ranges,omitempty"`

	Pivot    *PointSpec `yaml:"pivot,omitempty"`
	Trend    string     `yaml:"trend,omitempty"`
	Lower    *float64   `yaml:"lower,omitempty"`
	Upper    *float64   `yaml:"upper,omitempty"`
	MinScore *float64   `yaml:"min_score,omitempty"`
	MaxScore *float64   `yaml:"max_score,omitempty"`

	Calibration string      `yaml:"calibration,omitempty"`
	Points      []PointSpec `yaml:"points,omitempty"`
	Floor       *float64    `yaml:"floor,omitempty"`
	Ceiling     *float64    `yaml:"ceiling,omitempty"`
	Input       string      `yaml:"input,omitempty"`
}

// WeightSpec declares a weight dimension: category weights or decay tokens.
type WeightSpec struct {
	Categories map[string]float64 `yaml:"categories,omitempty"`
	Decay      map[string]string  `yaml:"decay,omitempty"`
}

// CompositeSpec declares the categories combined into the composite score.
type CompositeSpec struct {
	Name       string         `yaml:"name,omitempty"`
	Key        string         `yaml:"key"`
	Carry      []string       `yaml:"carry,omitempty"`
	Categories []CategorySpec `yaml:"categories"`
}

// CategorySpec is one scored input of the composite. File may be a doublestar
// glob; it must resolve to exactly one file.
type CategorySpec struct {
	Label        string  `yaml:"label"`
	File         string  `yaml:"file"`
	Sheet        string  `yaml:"sheet,omitempty"`
	Key          string  `yaml:"key,omitempty"`
	ScoreColumn  string  `yaml:"score_column"`
	StatusColumn string  `yaml:"status_column,omitempty"`
	Weight       float64 `yaml:"weight"`
}

// MetricNames returns the declared metric names, sorted.
func (m *Model) MetricNames() []string {
	return sortedKeys(m.Metrics)
}

// WeightNames returns the declared weight dimensions, sorted.
func (m *Model) WeightNames() []string {
	return sortedKeys(m.Weights)
}

func sortedKeys[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SchemaError lists every schema violation of a model file.
type SchemaError struct {
	Violations []cue.ValidationError
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s:\n  %s", ErrInvalidModel, strings.Join(msgs, "\n  "))
}

func (e *SchemaError) Unwrap() error { return ErrInvalidModel }

// LoadModel reads, schema-validates and decodes a model file.
func LoadModel(path string) (*Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model file: %w", err)
	}
	return ParseModel(path, content)
}

// ParseModel validates content against the model schema and decodes it. name
// is used in error messages.
func ParseModel(name string, content []byte) (*Model, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, name, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	data, ok := stringKeys(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", ErrInvalidModel, name)
	}

	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return nil, err
	}
	violations, err := v.ValidateModel(name, data)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}

	// Re-encode with string keys so boolean category labels decode as "true"/"false".
	normalized, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error re-encoding model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(normalized, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, name, err)
	}
	m.Path = name
	return &m, nil
}

// stringKeys converts every mapping key to its string form.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = stringKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}

// IsSchemaError reports whether err carries model schema violations.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
