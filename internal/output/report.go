package output

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/farol/internal/scoring"
	"github.com/dotcommander/farol/internal/table"
	"github.com/dotcommander/farol/internal/types"
)

// Version is reported in JSON headers. Set by the command layer.
var Version = "dev"

// Report is the outcome of one scoring run.
type Report struct {
	Command string
	Model   string
	Inputs  []string
	// Written is the path the result table was saved to, if any.
	Written string

	Table        table.Table
	KeyColumns   []string
	ScoreColumn  string
	StatusColumn string

	StartTime time.Time
}

// Entry is one scored record of a report.
type Entry struct {
	Key    string
	Score  float64 // NaN when unscored
	Status types.Status
}

// Scored reports whether the entry has a score.
func (e Entry) Scored() bool { return !math.IsNaN(e.Score) }

// Counts is the status distribution of a report.
type Counts struct {
	Green    int
	Yellow   int
	Red      int
	Unscored int
}

// Total is the number of records counted.
func (c Counts) Total() int { return c.Green + c.Yellow + c.Red + c.Unscored }

// Of returns the count for a status. StatusNone counts unscored records.
func (c Counts) Of(s types.Status) int {
	switch s {
	case types.StatusGreen:
		return c.Green
	case types.StatusYellow:
		return c.Yellow
	case types.StatusRed:
		return c.Red
	default:
		return c.Unscored
	}
}

// Entries returns one entry per table row in table order. The status comes
// from the status column when it has one, otherwise from the score.
func (r *Report) Entries() []Entry {
	out := make([]Entry, len(r.Table.Rows))
	for i, rec := range r.Table.Rows {
		e := Entry{Key: r.key(rec, i), Score: math.NaN()}
		if v, ok := rec.Float(r.ScoreColumn); ok {
			e.Score = v
		}
		if r.StatusColumn != "" && rec.Has(r.StatusColumn) {
			e.Status = types.Status(strings.ToLower(table.Key(rec[r.StatusColumn])))
		} else {
			e.Status = scoring.Classify(e.Score)
		}
		out[i] = e
	}
	return out
}

func (r *Report) key(rec table.Record, i int) string {
	if len(r.KeyColumns) == 0 {
		return "#" + table.Key(i+1)
	}
	parts := make([]string, len(r.KeyColumns))
	for j, k := range r.KeyColumns {
		parts[j] = table.Key(rec[k])
	}
	return strings.Join(parts, " / ")
}

// Counts returns the status distribution.
func (r *Report) Counts() Counts {
	var c Counts
	for _, e := range r.Entries() {
		switch e.Status {
		case types.StatusGreen:
			c.Green++
		case types.StatusYellow:
			c.Yellow++
		case types.StatusRed:
			c.Red++
		default:
			c.Unscored++
		}
	}
	return c
}

// Mean returns the mean score over scored records.
func (r *Report) Mean() (float64, bool) {
	var sum float64
	n := 0
	for _, e := range r.Entries() {
		if e.Scored() {
			sum += e.Score
			n++
		}
	}
	if n == 0 {
		return math.NaN(), false
	}
	return sum / float64(n), true
}

// Lowest returns up to n scored entries, lowest score first. Ties keep table
// order.
func (r *Report) Lowest(n int) []Entry {
	var scored []Entry
	for _, e := range r.Entries() {
		if e.Scored() {
			scored = append(scored, e)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score < scored[j].Score })
	if n >= 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// AllGreen reports whether every record is scored and green.
func (r *Report) AllGreen() bool {
	c := r.Counts()
	return c.Total() > 0 && c.Green == c.Total()
}
