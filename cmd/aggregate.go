package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/output"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Combine scored category tables into the composite score",
	Long: `The aggregate command reads every category table declared under composite in
the model file, joins them on the record key and computes

    composite = Σ(score × weight) / Σ(weight)

over the categories each record is present in. Category files are resolved
against --data-dir and may be glob patterns; a pattern must match exactly one
file. Carry columns are copied from the first category that holds the record.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runAggregate)
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate() error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	r, err := compositeReport(cfg, "aggregate")
	if err != nil {
		return err
	}
	return emit(cfg, r, cfg.Format)
}

// compositeReport computes the model composite and wraps it in a report.
func compositeReport(cfg *config.Config, command string) (*output.Report, error) {
	compiled, err := loadCompiled(cfg)
	if err != nil {
		return nil, err
	}
	res, err := engine.Composite(compiled, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return newReport(command, categoryFiles(compiled.Composite, cfg.DataDir), res.Table(),
		[]string{res.Key}, res.ScoreColumn(), res.StatusColumn()), nil
}

func categoryFiles(spec *config.CompositeSpec, dataDir string) []string {
	if spec == nil {
		return nil
	}
	files := make([]string, len(spec.Categories))
	for i, c := range spec.Categories {
		files[i] = filepath.Join(dataDir, c.File)
	}
	return files
}
