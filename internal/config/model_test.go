package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotcommander/farol/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModel = `version: 1
metrics:
  atm_unavailability:
    kind: range
    column: unavailability
    mode: higher-is-worse
    ranges:
      - {lower: 0, upper: 4, score_min: 9, score_max: 10}
      - {lower: 4.01, upper: 8, score_min: 7, score_max: 9}
  tcx:
    kind: inflection
    column: tcx
    pivot: {x: 2, y: 7}
    trend: decreasing
    lower: 0
    upper: 5
  water:
    kind: index
    column: pct_above
    calibration: ica
    input: percentage
    precision: 3
weights:
  after_reform:
    categories:
      true: 0.5
      False: 1
  age:
    decay:
      recent: linear
composite:
  name: global
  key: point
  carry: [day, month, year]
  categories:
    - {label: esg, file: esg.csv, score_column: score, weight: 0.2}
    - {label: performance, file: "perf/*.xlsx", sheet: scores, score_column: score, status_column: status, weight: 0.8}
`

func TestParseModel(t *testing.T) {
	m, err := ParseModel("farol.yaml", []byte(sampleModel))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "farol.yaml", m.Path)
	assert.Equal(t, []string{"atm_unavailability", "tcx", "water"}, m.MetricNames())
	assert.Equal(t, []string{"after_reform", "age"}, m.WeightNames())

	atm := m.Metrics["atm_unavailability"]
	assert.Equal(t, "range", atm.Kind)
	require.Len(t, atm.Ranges, 2)
	assert.Equal(t, 4.01, atm.Ranges[1].Lower)

	tcx := m.Metrics["tcx"]
	require.NotNil(t, tcx.Pivot)
	assert.Equal(t, 2.0, tcx.Pivot.X)
	require.NotNil(t, tcx.Upper)
	assert.Equal(t, 5.0, *tcx.Upper)
	assert.Nil(t, tcx.MinScore)

	water := m.Metrics["water"]
	require.NotNil(t, water.Precision)
	assert.Equal(t, 3, *water.Precision)
	assert.Equal(t, "percentage", water.Input)

	reform := m.Weights["after_reform"]
	assert.Equal(t, 0.5, reform.Categories["true"])
	assert.Equal(t, 1.0, reform.Categories["false"], "YAML booleans are keyed by their canonical spelling")
	assert.Equal(t, "linear", m.Weights["age"].Decay["recent"])

	require.NotNil(t, m.Composite)
	assert.Equal(t, "global", m.Composite.Name)
	assert.Equal(t, []string{"day", "month", "year"}, m.Composite.Carry)
	require.Len(t, m.Composite.Categories, 2)
	assert.Equal(t, "perf/*.xlsx", m.Composite.Categories[1].File)
	assert.Equal(t, 0.8, m.Composite.Categories[1].Weight)
}

func TestParseModelSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown kind", "metrics:\n  m:\n    kind: spline\n"},
		{"weight out of range", "weights:\n  t:\n    categories:\n      a: 2\n"},
		{"composite missing key", "composite:\n  categories:\n    - {label: a, file: a.csv, score_column: s, weight: 1}\n"},
		{"typo at top level", "metric: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel("farol.yaml", []byte(tt.content))
			require.Error(t, err)
			assert.True(t, IsSchemaError(err), "got %v", err)
			assert.True(t, errors.Is(err, ErrInvalidModel))
			assert.True(t, errors.Is(err, types.ErrValidation))
		})
	}
}

func TestParseModelMalformedYAML(t *testing.T) {
	_, err := ParseModel("farol.yaml", []byte("metrics: [unclosed"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModel))
	assert.False(t, IsSchemaError(err))
}

func TestParseModelEmpty(t *testing.T) {
	m, err := ParseModel("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, m.Metrics)
	assert.Nil(t, m.Composite)
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleModel), 0644))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
