package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/types"
)

var (
	weighGroup     []string
	weighValue     string
	weighEntity    []string
	weighStrategy  string
	weighDirection string
)

var weighCmd = &cobra.Command{
	Use:   "weigh <file>",
	Short: "Weight records by category and score the result",
	Long: `The weigh command runs the weighting pipeline over a table of records:

1. With --group, count the records per key combination
2. Multiply each count (or --value) by the model weight of every dimension
3. With --entity, average the weighted values per entity
4. Normalize onto 0-10 and classify

Weight dimensions come from the model file. A dimension applies to a record
when the record has a column of the same name. Rows whose value cannot be
weighted are logged and left unscored.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func() error { return runWeigh(args[0]) })
	},
}

func init() {
	weighCmd.Flags().StringSliceVarP(&weighGroup, "group", "g", nil, "Count records per these columns before weighting")
	weighCmd.Flags().StringVar(&weighValue, "value", "", "Column to weight when not grouping")
	weighCmd.Flags().StringSliceVarP(&weighEntity, "entity", "e", nil, "Average weighted values per these columns")
	weighCmd.Flags().StringVarP(&weighStrategy, "strategy", "s", "minmax", "Normalization strategy (minmax|robust|outlier)")
	weighCmd.Flags().StringVarP(&weighDirection, "direction", "d", types.HighIsGood.String(), "Which end scores 10 (high-is-good|low-is-good)")
	addTableFlags(weighCmd)
	rootCmd.AddCommand(weighCmd)
}

func runWeigh(path string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	dir, err := types.ParseDirection(weighDirection)
	if err != nil {
		return err
	}
	compiled, err := loadCompiled(cfg)
	if err != nil {
		return err
	}
	t, err := loadTable(path, sheet)
	if err != nil {
		return err
	}

	out, err := engine.Weigh(t, compiled.Weights, engine.WeighOptions{
		GroupKeys:    weighGroup,
		ValueColumn:  weighValue,
		Entity:       weighEntity,
		Strategy:     weighStrategy,
		Direction:    dir,
		ResultColumn: resultColumn,
		StatusColumn: statusColumn,
	})
	if err != nil {
		return err
	}

	keys := keyColumns
	switch {
	case len(keys) > 0:
	case len(weighEntity) > 0:
		keys = weighEntity
	default:
		keys = weighGroup
	}

	r := newReport("weigh", []string{path}, out, keys, scoreColumnOr(resultColumn), statusColumn)
	return emit(cfg, r, cfg.Format)
}
