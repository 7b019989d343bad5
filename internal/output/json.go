package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w      io.Writer
	quiet  bool
	indent bool
}

// NewJSONFormatter creates a new JSONFormatter writing to w (stdout when nil).
func NewJSONFormatter(w io.Writer, quiet bool, indent bool) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{
		w:      w,
		quiet:  quiet,
		indent: indent,
	}
}

// Format writes the report as JSON. Quiet mode is ignored: a machine-readable
// report is the command's output.
func (f *JSONFormatter) Format(r *Report) error {
	c := r.Counts()
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "farol",
			Version:   Version,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			Command:  r.Command,
			Model:    r.Model,
			Inputs:   r.Inputs,
			Written:  r.Written,
			Records:  c.Total(),
			Green:    c.Green,
			Yellow:   c.Yellow,
			Red:      c.Red,
			Unscored: c.Unscored,
			Duration: time.Since(r.StartTime).Round(time.Millisecond).String(),
		},
	}
	if mean, ok := r.Mean(); ok {
		report.Summary.Mean = &mean
	}

	entries := r.Entries()
	report.Results = make([]JSONResult, len(entries))
	for i, e := range entries {
		res := JSONResult{Key: e.Key, Status: string(e.Status)}
		if e.Scored() {
			score := e.Score
			res.Score = &score
		}
		report.Results[i] = res
	}

	var (
		jsonBytes []byte
		err       error
	)
	if f.indent {
		jsonBytes, err = json.MarshalIndent(report, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if _, err := fmt.Fprintln(f.w, string(jsonBytes)); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header  JSONHeader   `json:"header"`
	Summary JSONSummary  `json:"summary"`
	Results []JSONResult `json:"results"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary contains the status distribution
type JSONSummary struct {
	Command  string   `json:"command,omitempty"`
	Model    string   `json:"model,omitempty"`
	Inputs   []string `json:"inputs,omitempty"`
	Written  string   `json:"written,omitempty"`
	Records  int      `json:"records"`
	Green    int      `json:"green"`
	Yellow   int      `json:"yellow"`
	Red      int      `json:"red"`
	Unscored int      `json:"unscored"`
	Mean     *float64 `json:"mean,omitempty"`
	Duration string   `json:"duration"`
}

// JSONResult is one scored record. Score is null when the record is unscored.
type JSONResult struct {
	Key    string   `json:"key"`
	Score  *float64 `json:"score"`
	Status string   `json:"status,omitempty"`
}
