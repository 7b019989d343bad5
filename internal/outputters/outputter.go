package outputters

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/output"
)

// FormatSummary selects the distribution-first console layout.
const FormatSummary = "summary"

// Formatter renders a report.
type Formatter interface {
	Format(r *output.Report) error
}

// FormatterFactory creates formatters by format name.
type FormatterFactory interface {
	CreateFormatter(format string) (Formatter, error)
}

// DefaultFormatterFactory builds the output package formatters from the run
// settings.
type DefaultFormatterFactory struct {
	config *config.Config
	w      io.Writer
}

// NewDefaultFormatterFactory creates a factory writing to w (stdout when nil).
func NewDefaultFormatterFactory(cfg *config.Config, w io.Writer) *DefaultFormatterFactory {
	if w == nil {
		w = os.Stdout
	}
	return &DefaultFormatterFactory{config: cfg, w: w}
}

// CreateFormatter returns the formatter for format.
func (f *DefaultFormatterFactory) CreateFormatter(format string) (Formatter, error) {
	switch format {
	case "console":
		return output.NewConsoleFormatter(f.w, f.config.Quiet, f.config.Verbose), nil
	case FormatSummary:
		return output.NewSummaryFormatter(f.w, f.config.Quiet, f.config.Verbose), nil
	case "json":
		return output.NewJSONFormatter(f.w, f.config.Quiet, true), nil
	case "markdown":
		return output.NewMarkdownFormatter(f.w, f.config.Quiet, f.config.Verbose), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	factory FormatterFactory
}

// NewOutputter creates a new Outputter writing to stdout
func NewOutputter(cfg *config.Config) *Outputter {
	return NewOutputterWithFactory(cfg, NewDefaultFormatterFactory(cfg, nil))
}

// NewOutputterWithFactory creates an Outputter with a custom factory
func NewOutputterWithFactory(cfg *config.Config, factory FormatterFactory) *Outputter {
	return &Outputter{
		config:  cfg,
		factory: factory,
	}
}

// Format renders the report using the given format
func (o *Outputter) Format(r *output.Report, format string) error {
	// Set start time if not set
	if r.StartTime.IsZero() {
		r.StartTime = time.Now()
	}
	if r.Model == "" {
		r.Model = o.config.Model
	}

	formatter, err := o.factory.CreateFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(r)
}
