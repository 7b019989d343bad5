package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/farol/internal/discovery"
	"github.com/dotcommander/farol/internal/table"
)

// loadDocument reads a JSON or YAML sequence of objects. JSON is parsed by the
// YAML decoder too, so column order follows the keys of the first record that
// introduces them in both formats.
func loadDocument(path string, format discovery.Format) (table.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: read %s: %w", format, path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return table.Table{}, fmt.Errorf("%s: parse %s: %w", format, path, err)
	}
	if len(doc.Content) == 0 {
		return table.Table{}, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return table.Table{}, fmt.Errorf("%s: %s must hold a list of records", format, path)
	}

	var columns []string
	seen := make(map[string]bool)
	rows := make([]table.Record, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return table.Table{}, fmt.Errorf("%s: %s record %d is not an object", format, path, i+1)
		}
		row := make(table.Record, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			key := item.Content[j].Value
			var v any
			if err := item.Content[j+1].Decode(&v); err != nil {
				return table.Table{}, fmt.Errorf("%s: %s record %d field %q: %w", format, path, i+1, key, err)
			}
			row[key] = v
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
		rows = append(rows, row)
	}
	return table.New(columns, rows), nil
}

// saveJSON writes records as an array of objects with keys in column order.
func saveJSON(path string, t table.Table) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, c := range t.Columns {
			if j > 0 {
				buf.WriteString(", ")
			}
			k, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("json: encode column %q: %w", c, err)
			}
			v, err := json.Marshal(r[c])
			if err != nil {
				return fmt.Errorf("json: encode %s of record %d: %w", c, i+1, err)
			}
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(v)
		}
		buf.WriteString("}")
	}
	if len(t.Rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("json: write %s: %w", path, err)
	}
	return nil
}

// saveYAML writes records as a sequence of mappings with keys in column order.
func saveYAML(path string, t table.Table) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i, r := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range t.Columns {
			var val yaml.Node
			if err := val.Encode(r[c]); err != nil {
				return fmt.Errorf("yaml: encode %s of record %d: %w", c, i+1, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, &val)
		}
		seq.Content = append(seq.Content, m)
	}

	out, err := yaml.Marshal(seq)
	if err != nil {
		return fmt.Errorf("yaml: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("yaml: write %s: %w", path, err)
	}
	return nil
}
