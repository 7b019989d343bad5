package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/output"
	"github.com/dotcommander/farol/internal/outputters"
	"github.com/dotcommander/farol/internal/table"
)

var summaryScore string

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Show the status distribution of a scored table",
	Long: `The summary command shows how many records are green, yellow and red, the
mean score and the lowest-scoring records.

Without a file it summarizes the composite declared in the model file. With a
file it summarizes the scores already in that table: --score names the score
column and --status an optional status column (scores are classified when
there is none).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func() error { return runSummary(args) })
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryScore, "score", engine.DefaultScoreColumn, "Score column of the input table")
	summaryCmd.Flags().StringVar(&statusColumn, "status", "", "Status column of the input table")
	summaryCmd.Flags().StringSliceVarP(&keyColumns, "key", "k", nil, "Columns identifying a record")
	summaryCmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from .xlsx inputs (default first sheet)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	// The console summary has its own layout; other formats are unchanged.
	format := cfg.Format
	if format == "console" {
		format = outputters.FormatSummary
	}

	var r *output.Report
	if len(args) == 0 {
		if r, err = compositeReport(cfg, "summary"); err != nil {
			return err
		}
	} else {
		t, err := loadTable(args[0], sheet)
		if err != nil {
			return err
		}
		if !t.HasColumn(summaryScore) {
			return fmt.Errorf("%w: %q", table.ErrMissingColumn, summaryScore)
		}
		r = newReport("summary", args, t, keyColumns, summaryScore, statusColumn)
	}

	// Summaries never rewrite their input.
	cfg.Output = ""
	return emit(cfg, r, format)
}
