package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/engine"
)

var scoreColumn string

var scoreCmd = &cobra.Command{
	Use:   "score <metric> <file>",
	Short: "Score a column with a metric from the model",
	Long: `The score command applies one metric declared in the model file to a column
of a table and writes the 0-10 score next to it.

Metric kinds:
- range: piecewise linear over declared value ranges
- inflection: two line segments meeting at a pivot point
- index: calibrated consumption index (ICA/ICE)

The column defaults to the one the metric declares. Values outside every
range stay unscored and are reported as a warning.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func() error { return runScore(args[0], args[1]) })
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreColumn, "column", "c", "", "Column to score (default the metric's column)")
	addTableFlags(scoreCmd)
	rootCmd.AddCommand(scoreCmd)
}

func runScore(metricName, path string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	compiled, err := loadCompiled(cfg)
	if err != nil {
		return err
	}
	metric, err := compiled.Metric(metricName)
	if err != nil {
		return err
	}
	t, err := loadTable(path, sheet)
	if err != nil {
		return err
	}

	out, err := engine.ScoreColumn(t, metric, scoreColumn, resultColumn, statusColumn)
	if err != nil {
		return err
	}

	r := newReport("score "+metricName, []string{path}, out, keyColumns, scoreColumnOr(resultColumn), statusColumn)
	return emit(cfg, r, cfg.Format)
}
