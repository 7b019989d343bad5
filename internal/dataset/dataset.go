// Package dataset loads and saves tables in the formats farol reads: CSV,
// JSON, YAML and XLSX. The format is chosen by file extension.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dotcommander/farol/internal/discovery"
	"github.com/dotcommander/farol/internal/table"
)

// Options tunes format-specific behavior.
type Options struct {
	// Sheet selects the XLSX worksheet. Load defaults to the first sheet,
	// Save to "Sheet1".
	Sheet string
	// Delimiter is the CSV field separator (default ',').
	Delimiter rune
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Load reads the table at path.
func Load(path string, opts Options) (table.Table, error) {
	format, err := discovery.DetectFormat(path)
	if err != nil {
		return table.Table{}, err
	}

	var t table.Table
	switch format {
	case discovery.FormatCSV:
		t, err = loadCSV(path, opts)
	case discovery.FormatJSON, discovery.FormatYAML:
		t, err = loadDocument(path, format)
	case discovery.FormatXLSX:
		t, err = loadXLSX(path, opts)
	}
	if err != nil {
		return table.Table{}, err
	}

	slog.Info("table loaded", "path", path, "format", format.String(), "rows", t.Len(), "columns", len(t.Columns))
	return t, nil
}

// Save writes t to path, creating parent directories.
func Save(path string, t table.Table, opts Options) error {
	format, err := discovery.DetectFormat(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	switch format {
	case discovery.FormatCSV:
		err = saveCSV(path, t, opts)
	case discovery.FormatJSON:
		err = saveJSON(path, t)
	case discovery.FormatYAML:
		err = saveYAML(path, t)
	case discovery.FormatXLSX:
		err = saveXLSX(path, t, opts)
	}
	if err != nil {
		return err
	}

	slog.Info("table written", "path", path, "format", format.String(), "rows", t.Len())
	return nil
}

// formatCell renders a cell for text formats. nil is the empty string.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	default:
		return table.Key(v)
	}
}
