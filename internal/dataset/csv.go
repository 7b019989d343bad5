package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dotcommander/farol/internal/table"
)

// loadCSV reads a CSV file whose first row holds the column names. Empty
// cells are missing values; everything else is kept as text.
func loadCSV(path string, opts Options) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.Comma = opts.delimiter()
	records, err := reader.ReadAll()
	if err != nil {
		return table.Table{}, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return table.Table{}, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]table.Record, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return table.Table{}, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(table.Record, len(headers))
		for j, h := range headers {
			if record[j] == "" {
				row[h] = nil
				continue
			}
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return table.New(headers, rows), nil
}

func saveCSV(path string, t table.Table, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	w.Comma = opts.delimiter()
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write %s: %w", path, err)
	}
	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			record[i] = formatCell(r[c])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: write %s: %w", path, err)
	}
	return f.Close()
}
