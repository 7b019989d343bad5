package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dotcommander/farol/internal/types"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	quiet   bool
	verbose bool
}

// NewMarkdownFormatter creates a new MarkdownFormatter writing to w (stdout when nil).
func NewMarkdownFormatter(w io.Writer, quiet, verbose bool) *MarkdownFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &MarkdownFormatter{
		w:       w,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Format writes the report as Markdown
func (f *MarkdownFormatter) Format(r *Report) error {
	var builder strings.Builder
	c := r.Counts()

	// Header
	builder.WriteString("# Farol Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	if r.Command != "" {
		builder.WriteString(fmt.Sprintf("**Command:** `%s`\n\n", r.Command))
	}
	if r.Model != "" {
		builder.WriteString(fmt.Sprintf("**Model:** %s\n\n", r.Model))
	}
	for _, in := range r.Inputs {
		builder.WriteString(fmt.Sprintf("**Input:** %s\n\n", in))
	}
	builder.WriteString(fmt.Sprintf("**Duration:** %v\n\n", time.Since(r.StartTime).Round(time.Millisecond)))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	// Summary Table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Status | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| %s Green | %d |\n", getStatusEmoji(types.StatusGreen), c.Green))
	builder.WriteString(fmt.Sprintf("| %s Yellow | %d |\n", getStatusEmoji(types.StatusYellow), c.Yellow))
	builder.WriteString(fmt.Sprintf("| %s Red | %d |\n", getStatusEmoji(types.StatusRed), c.Red))
	builder.WriteString(fmt.Sprintf("| Unscored | %d |\n", c.Unscored))
	if mean, ok := r.Mean(); ok {
		builder.WriteString(fmt.Sprintf("| Mean score | %.2f |\n", mean))
	}
	builder.WriteString("\n")

	// Detailed Results
	builder.WriteString("## Results\n\n")
	entries := r.Entries()
	if len(entries) == 0 {
		builder.WriteString("*No records scored.*\n\n")
	} else {
		builder.WriteString("| Record | Score | Status |\n")
		builder.WriteString("|--------|-------|--------|\n")
		for _, e := range entries {
			// Green records are listed only in verbose mode.
			if !f.verbose && e.Status == types.StatusGreen {
				continue
			}
			score := "-"
			if e.Scored() {
				score = fmt.Sprintf("%.2f", e.Score)
			}
			builder.WriteString(fmt.Sprintf("| %s | %s | %s %s |\n",
				escapeCell(e.Key), score, getStatusEmoji(e.Status), e.Status))
		}
		builder.WriteString("\n")
	}

	// Conclusion
	builder.WriteString("## Conclusion\n\n")
	switch {
	case r.AllGreen():
		builder.WriteString("✓ All records are green\n")
	case c.Red > 0:
		verb := "are"
		if c.Red == 1 {
			verb = "is"
		}
		builder.WriteString(fmt.Sprintf("✗ %d %s %s red\n", c.Red, pluralizeCount("record", c.Red), verb))
	default:
		builder.WriteString("No red records\n")
	}
	if r.Written != "" {
		builder.WriteString(fmt.Sprintf("\nResults written to `%s`\n", r.Written))
	}

	if _, err := io.WriteString(f.w, builder.String()); err != nil {
		return fmt.Errorf("error writing markdown: %w", err)
	}
	return nil
}

// getStatusEmoji returns an emoji for the status
func getStatusEmoji(s types.Status) string {
	switch s {
	case types.StatusGreen:
		return "🟢"
	case types.StatusYellow:
		return "🟡"
	case types.StatusRed:
		return "🔴"
	default:
		return "⚪"
	}
}

// escapeCell keeps a value from breaking the table layout.
func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}
