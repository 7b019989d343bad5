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

// DefaultRowLimit caps the rows the console lists unless verbose.
const DefaultRowLimit = 20

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w         io.Writer
	quiet     bool
	verbose   bool
	colorize  bool
	limit     int
	startTime time.Time
}

// NewConsoleFormatter creates a new ConsoleFormatter writing to w (stdout when nil).
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleFormatter{
		w:         w,
		quiet:     quiet,
		verbose:   verbose,
		colorize:  true,
		limit:     DefaultRowLimit,
		startTime: time.Now(),
	}
}

// Format prints the scored records, the status distribution and the written path.
func (f *ConsoleFormatter) Format(r *Report) error {
	if f.quiet {
		return nil
	}

	entries := r.Entries()
	f.printEntries(entries)
	f.printSummary(r)
	f.printConclusion(r)
	return nil
}

// printEntries lists records with their score and status.
func (f *ConsoleFormatter) printEntries(entries []Entry) {
	shown := entries
	if !f.verbose && len(shown) > f.limit {
		shown = shown[:f.limit]
	}

	width := 0
	for _, e := range shown {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}

	for _, e := range shown {
		icon, style := statusIcon(e.Status), f.statusStyle(e.Status)
		score := "-"
		if e.Scored() {
			score = fmt.Sprintf("%5.2f", e.Score)
		}
		status := string(e.Status)
		if status == "" {
			status = "unscored"
		}
		fmt.Fprintf(f.w, "%s %-*s  %s  %s\n", style.Render(icon), width, e.Key, score, style.Render(status))
	}

	if hidden := len(entries) - len(shown); hidden > 0 {
		fmt.Fprintln(f.w, f.dim().Render(fmt.Sprintf("  ... %d more (use --verbose to list all)", hidden)))
	}
}

// printSummary prints the distribution line
func (f *ConsoleFormatter) printSummary(r *Report) {
	c := r.Counts()
	if c.Total() == 0 {
		fmt.Fprintln(f.w, "No records scored")
		return
	}

	parts := []string{
		f.statusStyle(types.StatusGreen).Render(fmt.Sprintf("%d green", c.Green)),
		f.statusStyle(types.StatusYellow).Render(fmt.Sprintf("%d yellow", c.Yellow)),
		f.statusStyle(types.StatusRed).Render(fmt.Sprintf("%d red", c.Red)),
	}
	if c.Unscored > 0 {
		parts = append(parts, f.dim().Render(fmt.Sprintf("%d unscored", c.Unscored)))
	}

	line := strings.Join(parts, ", ")
	if mean, ok := r.Mean(); ok {
		line += fmt.Sprintf(", mean %.2f", mean)
	}
	duration := time.Since(f.startTime)
	fmt.Fprintf(f.w, "\n%d %s: %s (%s)\n", c.Total(), pluralizeCount("record", c.Total()), line, formatDuration(duration))
}

// printConclusion prints the written path and the all-green message
func (f *ConsoleFormatter) printConclusion(r *Report) {
	if r.Written != "" {
		fmt.Fprintf(f.w, "Wrote %s\n", r.Written)
	}
	if r.AllGreen() {
		if f.colorize {
			style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
			fmt.Fprintf(f.w, "%s\n", style.Render("✓ All green"))
		} else {
			fmt.Fprintln(f.w, "✓ All green")
		}
	}
}

func (f *ConsoleFormatter) statusStyle(s types.Status) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return statusStyle(s)
}

func (f *ConsoleFormatter) dim() lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
}

// statusStyle returns the color of a status.
func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusGreen:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case types.StatusYellow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case types.StatusRed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}

func statusIcon(s types.Status) string {
	switch s {
	case types.StatusGreen:
		return "●"
	case types.StatusYellow:
		return "◐"
	case types.StatusRed:
		return "✗"
	default:
		return "·"
	}
}

// pluralizeCount returns singular or plural form based on count.
func pluralizeCount(s string, count int) string {
	if count == 1 {
		return s
	}
	return s + "s"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
