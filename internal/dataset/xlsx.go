package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dotcommander/farol/internal/table"
)

const defaultSheet = "Sheet1"

// loadXLSX reads one worksheet whose first row holds the column names.
// Trailing empty cells, which the reader trims, become missing values.
func loadXLSX(path string, opts Options) (table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.Table{}, fmt.Errorf("xlsx: %s has no worksheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values, so number formats such as "#,##0.00" do not turn numbers into text.
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return table.Table{}, fmt.Errorf("xlsx: read sheet %q of %s: %w", sheet, path, err)
	}
	if len(records) == 0 {
		return table.Table{}, fmt.Errorf("xlsx: sheet %q of %s is empty (no header row)", sheet, path)
	}

	headers := records[0]
	rows := make([]table.Record, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(headers) {
			return table.Table{}, fmt.Errorf("xlsx: row %d has %d cells, expected at most %d", i+2, len(record), len(headers))
		}
		row := make(table.Record, len(headers))
		for j, h := range headers {
			if j >= len(record) || record[j] == "" {
				row[h] = nil
				continue
			}
			row[h] = record[j]
		}
		rows = append(rows, row)
	}
	return table.New(headers, rows), nil
}

func saveXLSX(path string, t table.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	sheet := opts.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("xlsx: name sheet %q: %w", sheet, err)
		}
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(t.Columns))
		for j, c := range t.Columns {
			values[j] = r[c]
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}
