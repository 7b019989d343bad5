package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/farol/internal/discovery"
	"github.com/dotcommander/farol/internal/normalize"
	"github.com/dotcommander/farol/internal/scoring"
	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
	"github.com/dotcommander/farol/internal/weights"
)

func TestNormalize(t *testing.T) {
	in := table.New([]string{"branch", "count"}, []table.Record{
		{"branch": "A", "count": 1.0},
		{"branch": "B", "count": 2.0},
		{"branch": "C", "count": 3.0},
		{"branch": "D", "count": nil},
	})

	out, err := Normalize(in, "count", "minmax", types.HighIsGood, "")
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 5.0, 10.0, nil}, out.Values(DefaultScoreColumn))
	assert.False(t, in.HasColumn(DefaultScoreColumn), "input is not modified")

	out, err = Normalize(in, "count", "minmax", types.LowIsGood, "inv")
	require.NoError(t, err)
	assert.Equal(t, []any{10.0, 5.0, 0.0, nil}, out.Values("inv"))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestNormalizeSpreadWarning(t *testing.T) {
	in := table.New([]string{"v"}, []table.Record{
		{"v": 1.0}, {"v": 1.0}, {"v": 1.0}, {"v": 1.0}, {"v": 100.0},
	})

	tests := []struct {
		strategy string
		warns    bool
	}{
		{"minmax", false},
		{"robust", true},
		{"outlier", true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			logs := captureLogs(t)
			_, err := Normalize(in, "v", tt.strategy, types.HighIsGood, "")
			require.NoError(t, err)
			if tt.warns {
				assert.Contains(t, logs.String(), "normalization input")
			} else {
				assert.NotContains(t, logs.String(), "normalization input")
			}
		})
	}
}

func TestNormalizeAllMissing(t *testing.T) {
	in := table.New([]string{"count"}, []table.Record{{"count": nil}, {"count": "n/a"}})

	out, err := Normalize(in, "count", "robust", types.HighIsGood, "score")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, out.Values("score"))
}

func TestNormalizeErrors(t *testing.T) {
	in := table.New([]string{"count"}, []table.Record{{"count": 1.0}})

	_, err := Normalize(in, "count", "zscore", types.HighIsGood, "")
	assert.True(t, errors.Is(err, normalize.ErrUnknownStrategy))

	_, err = Normalize(in, "missing", "minmax", types.HighIsGood, "")
	assert.True(t, errors.Is(err, table.ErrMissingColumn))
}

func TestScoreColumn(t *testing.T) {
	c, err := Compile(testModel(), scoring.DefaultPrecision)
	require.NoError(t, err)
	m, err := c.Metric("atm_unavailability")
	require.NoError(t, err)

	in := table.New([]string{"atm", "unavailability"}, []table.Record{
		{"atm": "X1", "unavailability": "2"},
		{"atm": "X2", "unavailability": 50.0},
		{"atm": "X3", "unavailability": 150.0},
		{"atm": "X4", "unavailability": nil},
	})

	out, err := ScoreColumn(in, m, "", "atm_score", "atm_status")
	require.NoError(t, err)
	assert.Equal(t, []any{9.5, 3.8, nil, nil}, out.Values("atm_score"))
	assert.Equal(t, []any{"green", "red", nil, nil}, out.Values("atm_status"))
}

func TestScoreColumnErrors(t *testing.T) {
	c, err := Compile(testModel(), scoring.DefaultPrecision)
	require.NoError(t, err)
	m, err := c.Metric("guide_availability")
	require.NoError(t, err)

	in := table.New([]string{"availability"}, []table.Record{{"availability": 100.0}})

	_, err = ScoreColumn(in, m, "", "", "")
	assert.True(t, errors.Is(err, ErrInvalidMetric), "metric without a column needs one passed")

	_, err = ScoreColumn(in, m, "uptime", "", "")
	assert.True(t, errors.Is(err, table.ErrMissingColumn))

	out, err := ScoreColumn(in, m, "availability", "", "")
	require.NoError(t, err)
	assert.Equal(t, []any{10.0}, out.Values(DefaultScoreColumn))
}

func maintenanceTable() table.Table {
	return table.New([]string{"branch", "reform"}, []table.Record{
		{"branch": "A", "reform": "Sim"},
		{"branch": "A", "reform": "Sim"},
		{"branch": "A", "reform": "Nao"},
		{"branch": "B", "reform": "Sim"},
	})
}

func reformWeights(t *testing.T) weights.Model {
	t.Helper()
	m, err := weights.Model{}.Declare("reform", map[string]float64{"Sim": 0.7, "Nao": 0.3})
	require.NoError(t, err)
	return m
}

func TestWeigh(t *testing.T) {
	out, err := Weigh(maintenanceTable(), reformWeights(t), WeighOptions{
		GroupKeys:    []string{"branch", "reform"},
		Entity:       []string{"branch"},
		Direction:    types.LowIsGood,
		ResultColumn: "score",
		StatusColumn: "status",
	})
	require.NoError(t, err)

	// A: (2·0.7 + 1·0.3) / 2 = 0.85, B: 0.7. Fewer weighted maintenances score higher.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"branch", DefaultWeightedColumn, "score", "status"}, out.Columns)
	assert.Equal(t, []any{"A", "B"}, out.Values("branch"))
	weighted := out.Floats(DefaultWeightedColumn)
	assert.InDelta(t, 0.85, weighted[0], 1e-9)
	assert.InDelta(t, 0.7, weighted[1], 1e-9)
	assert.Equal(t, []any{0.0, 10.0}, out.Values("score"))
	assert.Equal(t, []any{"red", "green"}, out.Values("status"))
}

func TestWeighValueColumnSkipsBadRows(t *testing.T) {
	in := table.New([]string{"branch", "reform", "qty"}, []table.Record{
		{"branch": "A", "reform": "Sim", "qty": 10.0},
		{"branch": "B", "reform": "Nao", "qty": "many"},
		{"branch": "C", "reform": "Nao", "qty": 10.0},
		{"branch": "D", "reform": "Sim", "qty": nil},
	})

	out, err := Weigh(in, reformWeights(t), WeighOptions{ValueColumn: "qty", Direction: types.HighIsGood})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())

	weighted := out.Values(DefaultWeightedColumn)
	assert.Equal(t, 7.0, weighted[0])
	assert.Nil(t, weighted[1], "non-numeric value contributes nothing")
	assert.Equal(t, 3.0, weighted[2])
	assert.Nil(t, weighted[3], "missing value contributes nothing")
	assert.Equal(t, []any{10.0, nil, 0.0, nil}, out.Values(DefaultScoreColumn))
}

func TestWeighErrors(t *testing.T) {
	wm := reformWeights(t)

	_, err := Weigh(maintenanceTable(), wm, WeighOptions{})
	assert.True(t, errors.Is(err, types.ErrValidation))

	_, err = Weigh(maintenanceTable(), wm, WeighOptions{ValueColumn: "qty"})
	assert.True(t, errors.Is(err, table.ErrMissingColumn))

	_, err = Weigh(maintenanceTable(), wm, WeighOptions{GroupKeys: []string{"region"}})
	assert.True(t, errors.Is(err, table.ErrMissingColumn))

	_, err = Weigh(maintenanceTable(), wm, WeighOptions{GroupKeys: []string{"branch"}, Strategy: "zscore"})
	assert.True(t, errors.Is(err, normalize.ErrUnknownStrategy))
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestComposite(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "esg.csv", "point,score,status\nP1,5,\nP2,9,\nP4,,Red\n")
	writeCSV(t, dir, "perf/2024-10.csv", "point,score,month\nP1,7,10\nP3,3,10\n")

	m := testModel()
	m.Composite.Name = "global"
	m.Composite.Carry = []string{"month"}
	m.Composite.Categories[0].StatusColumn = "status"
	m.Composite.Categories[1].File = "perf/*.csv"

	c, err := Compile(m, scoring.DefaultPrecision)
	require.NoError(t, err)

	res, err := Composite(c, dir)
	require.NoError(t, err)
	assert.Equal(t, "global", res.Name)
	require.Len(t, res.Rows, 4)

	byKey := make(map[string]int)
	for i, r := range res.Rows {
		byKey[table.Key(r.Key)] = i
	}
	p1 := res.Rows[byKey["P1"]]
	assert.InDelta(t, 6.6, p1.Score, 1e-9)
	assert.Equal(t, types.StatusYellow, p1.Status)
	assert.Equal(t, "10", p1.Carry["month"])

	assert.Equal(t, types.StatusGreen, res.Rows[byKey["P2"]].Status)
	assert.Equal(t, types.StatusRed, res.Rows[byKey["P3"]].Status)

	p4 := res.Rows[byKey["P4"]]
	assert.Equal(t, types.StatusRed, p4.Statuses[0], "input status kept when the score is missing")
	assert.Equal(t, types.StatusNone, p4.Status)

	tbl := res.Table()
	assert.True(t, tbl.HasColumn("global_score"))
	assert.True(t, tbl.HasColumn("esg_weight"))
}

func TestCompositeErrors(t *testing.T) {
	c, err := Compile(testModel(), scoring.DefaultPrecision)
	require.NoError(t, err)

	_, err = Composite(c, t.TempDir())
	assert.True(t, errors.Is(err, discovery.ErrNoMatch))

	c.Composite = nil
	_, err = Composite(c, t.TempDir())
	assert.True(t, errors.Is(err, ErrNoComposite))

	dir := t.TempDir()
	writeCSV(t, dir, "esg.csv", "point,score\nP1,5\n")
	writeCSV(t, dir, "performance.csv", "id,score\nP1,5\n")
	c, err = Compile(testModel(), scoring.DefaultPrecision)
	require.NoError(t, err)
	_, err = Composite(c, dir)
	assert.True(t, errors.Is(err, table.ErrMissingColumn))
}

func TestClassify(t *testing.T) {
	in := table.New([]string{"score"}, []table.Record{{"score": 4.0}, {"score": 8.0}, {"score": 8.01}, {"score": nil}})

	out, err := Classify(in, "score", "status")
	require.NoError(t, err)
	assert.Equal(t, []any{"red", "yellow", "green", nil}, out.Values("status"))

	_, err = Classify(in, "total", "status")
	assert.True(t, errors.Is(err, table.ErrMissingColumn))
}
