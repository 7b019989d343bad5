package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/dataset"
	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/logging"
	"github.com/dotcommander/farol/internal/output"
	"github.com/dotcommander/farol/internal/outputters"
	"github.com/dotcommander/farol/internal/project"
	"github.com/dotcommander/farol/internal/table"
)

// loadRunConfig loads the run settings and installs the logger. Quiet runs
// only log errors; verbose runs log at debug unless a level was chosen.
func loadRunConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(modelPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	level := cfg.LogLevel
	switch {
	case cfg.Quiet:
		level = "error"
	case cfg.Verbose && level == "info":
		level = "debug"
	}
	if _, err := logging.Setup(level, cfg.LogFormat, os.Stderr); err != nil {
		return nil, err
	}
	if modelPath == "" && cfg.Model == config.DefaultModelFile {
		locateWorkspace(cfg)
	}
	return cfg, nil
}

// locateWorkspace points cfg at the nearest workspace above the working
// directory when the default model file is not in it. Category files are
// then resolved against the workspace root.
func locateWorkspace(cfg *config.Config) {
	if _, err := os.Stat(cfg.Model); !errors.Is(err, fs.ErrNotExist) {
		return
	}
	root, err := project.FindProjectRoot(".")
	if err != nil {
		return
	}
	info, err := project.Detect(root)
	if err != nil || info.Model == "" {
		return
	}
	slog.Debug("workspace found", "root", info.Root, "model", info.Model, "settings", info.Settings)
	cfg.Model = info.Model
	if cfg.DataDir == "" {
		cfg.DataDir = info.Root
	}
}

// loadCompiled reads, validates and compiles the configured model file.
func loadCompiled(cfg *config.Config) (*engine.Compiled, error) {
	model, err := config.LoadModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	compiled, err := engine.Compile(model, cfg.Precision)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", cfg.Model, err)
	}
	slog.Debug("model loaded", "path", cfg.Model, "metrics", len(compiled.Metrics), "weights", compiled.Weights.Len())
	return compiled, nil
}

// loadTable reads an input table.
func loadTable(path, sheet string) (table.Table, error) {
	t, err := dataset.Load(path, dataset.Options{Sheet: sheet})
	if err != nil {
		return table.Table{}, fmt.Errorf("error loading %s: %w", path, err)
	}
	return t, nil
}

// emit saves the result table when an output file is configured and renders
// the report in format.
func emit(cfg *config.Config, r *output.Report, format string) error {
	if cfg.Output != "" {
		if err := dataset.Save(cfg.Output, r.Table, dataset.Options{}); err != nil {
			return fmt.Errorf("error writing results: %w", err)
		}
		r.Written = cfg.Output
	}

	factory := outputters.NewDefaultFormatterFactory(cfg, stdout)
	if err := outputters.NewOutputterWithFactory(cfg, factory).Format(r, format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}

func newReport(command string, inputs []string, t table.Table, keys []string, scoreCol, statusCol string) *output.Report {
	return &output.Report{
		Command:      command,
		Inputs:       inputs,
		Table:        t,
		KeyColumns:   keys,
		ScoreColumn:  scoreCol,
		StatusColumn: statusCol,
		StartTime:    time.Now(),
	}
}

// runCommand runs fn and exits with status 1 on error.
func runCommand(fn func() error) {
	if err := fn(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

// Flags shared by the commands that read one input table.
var (
	sheet        string
	keyColumns   []string
	resultColumn string
	statusColumn string
)

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from .xlsx inputs (default first sheet)")
	cmd.Flags().StringSliceVarP(&keyColumns, "key", "k", nil, "Columns identifying a record in the report")
	cmd.Flags().StringVar(&resultColumn, "result", engine.DefaultScoreColumn, "Column the score is written to")
	cmd.Flags().StringVar(&statusColumn, "status", "", "Column the red/yellow/green status is written to")
}
