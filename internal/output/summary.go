package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/farol/internal/types"
)

const (
	barWidth      = 30
	defaultLowest = 5
)

// SummaryFormatter formats a report summary-first: the status distribution as
// bars, then the lowest-scoring records.
type SummaryFormatter struct {
	w         io.Writer
	quiet     bool
	verbose   bool
	colorize  bool
	lowest    int
	startTime time.Time
}

// NewSummaryFormatter creates a new SummaryFormatter writing to w (stdout when nil).
// Verbose doubles the number of lowest-scoring records listed.
func NewSummaryFormatter(w io.Writer, quiet, verbose bool) *SummaryFormatter {
	if w == nil {
		w = os.Stdout
	}
	lowest := defaultLowest
	if verbose {
		lowest *= 2
	}
	return &SummaryFormatter{
		w:         w,
		quiet:     quiet,
		verbose:   verbose,
		colorize:  true,
		lowest:    lowest,
		startTime: time.Now(),
	}
}

// Format prints the distribution and the lowest scores.
func (f *SummaryFormatter) Format(r *Report) error {
	if f.quiet {
		return nil
	}

	boldStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	if !f.colorize {
		boldStyle, dimStyle = lipgloss.NewStyle(), lipgloss.NewStyle()
	}

	c := r.Counts()
	fmt.Fprintln(f.w)
	f.printBars(c)
	f.printLowest(r.Lowest(f.lowest), boldStyle)
	f.printSummaryLine(r, c, dimStyle)
	return nil
}

// printBars prints one bar per status scaled to the largest count.
func (f *SummaryFormatter) printBars(c Counts) {
	statuses := []types.Status{types.StatusGreen, types.StatusYellow, types.StatusRed}
	labels := []string{"green", "yellow", "red"}
	if c.Unscored > 0 {
		statuses = append(statuses, types.StatusNone)
		labels = append(labels, "unscored")
	}

	maxCount := 0
	for _, s := range statuses {
		if n := c.Of(s); n > maxCount {
			maxCount = n
		}
	}
	nameWidth := 0
	for _, l := range labels {
		if len(l) > nameWidth {
			nameWidth = len(l)
		}
	}

	total := c.Total()
	for i, s := range statuses {
		n := c.Of(s)
		width := 0
		if maxCount > 0 {
			width = n * barWidth / maxCount
		}
		if n > 0 && width == 0 {
			width = 1
		}
		bar := strings.Repeat("█", width)
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		if f.colorize {
			bar = statusStyle(s).Render(bar)
		}
		fmt.Fprintf(f.w, "  %-*s  %s %d (%.1f%%)\n", nameWidth, labels[i], bar, n, pct)
	}
}

// printLowest lists the lowest-scoring records.
func (f *SummaryFormatter) printLowest(entries []Entry, boldStyle lipgloss.Style) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, boldStyle.Render("Lowest scores:"))
	width := 0
	for _, e := range entries {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}
	for _, e := range entries {
		score := fmt.Sprintf("%5.2f", e.Score)
		if f.colorize {
			score = statusStyle(e.Status).Render(score)
		}
		fmt.Fprintf(f.w, "  %-*s  %s\n", width, e.Key, score)
	}
}

// printSummaryLine prints the record count, mean and duration.
func (f *SummaryFormatter) printSummaryLine(r *Report, c Counts, dimStyle lipgloss.Style) {
	fmt.Fprintln(f.w)
	text := fmt.Sprintf("%d %s", c.Total(), pluralizeCount("record", c.Total()))
	if mean, ok := r.Mean(); ok {
		text += fmt.Sprintf(", mean %.2f", mean)
	}
	text += fmt.Sprintf(" (%s)", formatDuration(time.Since(f.startTime)))

	switch {
	case r.AllGreen() && f.colorize:
		fmt.Fprintln(f.w, statusStyle(types.StatusGreen).Bold(true).Render("✓ "+text))
	case c.Red > 0 && f.colorize:
		fmt.Fprintln(f.w, statusStyle(types.StatusRed).Render(text))
	default:
		fmt.Fprintln(f.w, dimStyle.Render(text))
	}
	if r.Written != "" {
		fmt.Fprintf(f.w, "Wrote %s\n", r.Written)
	}
}
