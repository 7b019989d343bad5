package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/types"
)

var (
	normColumn    string
	normStrategy  string
	normDirection string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Rescale a numeric column onto the 0-10 scale",
	Long: `The normalize command rescales one numeric column of a table onto 0-10.

Strategies:
- minmax: linear between the column minimum and maximum
- robust: distance from the median in interquartile ranges, clipped to 0-10
- outlier: minmax over the values inside the IQR fence, outliers pinned to 0 or 10

Direction:
- high-is-good: the largest value scores 10
- low-is-good: the smallest value scores 10

Missing and non-numeric cells stay unscored.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func() error { return runNormalize(args[0]) })
	},
}

func init() {
	normalizeCmd.Flags().StringVarP(&normColumn, "column", "c", "", "Column to normalize (required)")
	normalizeCmd.Flags().StringVarP(&normStrategy, "strategy", "s", "minmax", "Normalization strategy (minmax|robust|outlier)")
	normalizeCmd.Flags().StringVarP(&normDirection, "direction", "d", types.HighIsGood.String(), "Which end scores 10 (high-is-good|low-is-good)")
	addTableFlags(normalizeCmd)
	_ = normalizeCmd.MarkFlagRequired("column")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(path string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	dir, err := types.ParseDirection(normDirection)
	if err != nil {
		return err
	}
	t, err := loadTable(path, sheet)
	if err != nil {
		return err
	}

	out, err := engine.Normalize(t, normColumn, normStrategy, dir, resultColumn)
	if err != nil {
		return err
	}
	if statusColumn != "" {
		if out, err = engine.Classify(out, scoreColumnOr(resultColumn), statusColumn); err != nil {
			return err
		}
	}

	r := newReport("normalize", []string{path}, out, keyColumns, scoreColumnOr(resultColumn), statusColumn)
	return emit(cfg, r, cfg.Format)
}

func scoreColumnOr(column string) string {
	if column == "" {
		return engine.DefaultScoreColumn
	}
	return column
}
