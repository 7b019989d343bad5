package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dotcommander/farol/internal/table"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sampleTable() table.Table {
	return table.New(
		[]string{"point", "value", "status"},
		[]table.Record{
			{"point": "P1", "value": 7.5, "status": "green"},
			{"point": "P2", "value": nil, "status": "red"},
			{"point": "P3", "value": 2.0, "status": nil},
		},
	)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "points.csv", "point,value,region\nP1,7.5,north\nP2,,south\n")

	got, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "value", "region"}, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "7.5", got.Rows[0]["value"])
	assert.Nil(t, got.Rows[1]["value"])

	values := got.Floats("value")
	assert.Equal(t, 7.5, values[0])
	assert.True(t, math.IsNaN(values[1]), "missing cell reads as NaN")
}

func TestLoadCSVDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "points.csv", "point;value\nP1;3\n")

	got, err := Load(path, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "value"}, got.Columns)
	assert.Equal(t, "3", got.Rows[0]["value"])
}

func TestLoadCSVErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"), Options{})
	assert.ErrorContains(t, err, "csv: open")

	empty := writeFile(t, dir, "empty.csv", "")
	_, err = Load(empty, Options{})
	assert.ErrorContains(t, err, "no header row")

	ragged := writeFile(t, dir, "ragged.csv", "a,b\n1,2\n3\n")
	_, err = Load(ragged, Options{})
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scores.json", `[
  {"point": "P1", "score": 8.25, "ok": true},
  {"point": "P2", "score": null, "extra": "x"}
]`)

	got, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "score", "ok", "extra"}, got.Columns)
	assert.Equal(t, 8.25, got.Rows[0]["score"])
	assert.Equal(t, true, got.Rows[0]["ok"])
	assert.Nil(t, got.Rows[1]["score"])
	assert.False(t, got.Rows[0].Has("extra"))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scores.yaml", "- point: P1\n  value: 4\n- point: P2\n  value: 9.5\n")

	got, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "value"}, got.Columns)
	v, ok := got.Rows[0].Float("value")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestLoadDocumentErrors(t *testing.T) {
	dir := t.TempDir()

	notList := writeFile(t, dir, "obj.json", `{"point": "P1"}`)
	_, err := Load(notList, Options{})
	assert.ErrorContains(t, err, "list of records")

	scalars := writeFile(t, dir, "scalars.yaml", "- 1\n- 2\n")
	_, err = Load(scalars, Options{})
	assert.ErrorContains(t, err, "not an object")

	emptyDoc := writeFile(t, dir, "empty.yaml", "")
	got, err := Load(emptyDoc, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("data.parquet", Options{})
	assert.ErrorContains(t, err, "parquet")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, sampleTable(), Options{}))

			got, err := Load(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"point", "value", "status"}, got.Columns)
			require.Equal(t, 3, got.Len())

			v, ok := got.Rows[0].Float("value")
			require.True(t, ok)
			assert.Equal(t, 7.5, v)
			_, ok = got.Rows[1].Float("value")
			assert.False(t, ok)
			assert.Equal(t, "red", got.Rows[1]["status"])
			assert.Nil(t, got.Rows[2]["status"])
		})
	}
}

func TestSaveXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, Save(path, sampleTable(), Options{Sheet: "scores"}))

	got, err := Load(path, Options{Sheet: "scores"})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "value", "status"}, got.Columns)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "P1", got.Rows[0]["point"])

	v, ok := got.Rows[0].Float("value")
	require.True(t, ok)
	assert.Equal(t, 7.5, v)
	assert.Nil(t, got.Rows[1]["value"])
	assert.Nil(t, got.Rows[2]["status"], "trailing empty cell is missing")

	// The first sheet is used when none is named.
	got, err = Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	_, err = Load(path, Options{Sheet: "absent"})
	assert.Error(t, err)
}

func TestLoadXLSXFormattedNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visits.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "branch"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "visits"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "uptime"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "A"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 12345.5))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", 0.995))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", percent))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Load(path, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())

	visits, ok := got.Rows[0].Float("visits")
	require.True(t, ok, "formatted number is read as its value, got %v", got.Rows[0]["visits"])
	assert.Equal(t, 12345.5, visits)

	uptime, ok := got.Rows[0].Float("uptime")
	require.True(t, ok)
	assert.InDelta(t, 0.995, uptime, 1e-12)
}

func TestSaveJSONLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	tbl := table.New([]string{"b", "a"}, []table.Record{{"b": 1.0, "a": "x"}})
	require.NoError(t, Save(path, tbl, Options{}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\"b\": 1, \"a\": \"x\"}\n]\n", string(content))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{7.25, "7.25"},
		{3.0, "3"},
		{true, "true"},
		{4, "4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}
