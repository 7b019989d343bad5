package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/discovery"
	"github.com/dotcommander/farol/internal/engine"
	"github.com/dotcommander/farol/internal/normalize"
)

var checkResolve bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the scoring model file",
	Long: `The check command validates the model file without scoring anything.

Checks:
- Schema: metric kinds, ranges, pivots, weight values within [0, 1]
- Metrics: every metric compiles (known calibrations, pivot inside bounds)
- Weights: category labels unique after folding true/false spellings
- Composite: category weights sum to 1

With --resolve every composite category file must match exactly one file
under --data-dir.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runCheck)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkResolve, "resolve", false, "Also resolve composite category files")
	rootCmd.AddCommand(checkCmd)
}

var (
	checkOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	checkFail = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	checkDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runCheck() error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	model, err := config.LoadModel(cfg.Model)
	if err != nil {
		var se *config.SchemaError
		if errors.As(err, &se) {
			fmt.Fprintln(stdout, checkFail.Render("✗ "+cfg.Model))
			for _, v := range se.Violations {
				fmt.Fprintf(stdout, "  %s\n", v.String())
			}
			return fmt.Errorf("%d schema violation(s)", len(se.Violations))
		}
		return err
	}

	compiled, err := engine.Compile(model, cfg.Precision)
	if err != nil {
		fmt.Fprintln(stdout, checkFail.Render("✗ "+cfg.Model))
		return fmt.Errorf("model %s: %w", cfg.Model, err)
	}

	if checkResolve && compiled.Composite != nil {
		fd := discovery.NewFileDiscovery(cfg.DataDir)
		var missing []string
		for _, c := range compiled.Composite.Categories {
			if _, err := fd.FindOne(c.File); err != nil {
				missing = append(missing, fmt.Sprintf("%s: %v", c.Label, err))
			}
		}
		if len(missing) > 0 {
			fmt.Fprintln(stdout, checkFail.Render("✗ "+cfg.Model))
			for _, m := range missing {
				fmt.Fprintf(stdout, "  %s\n", m)
			}
			return fmt.Errorf("%d category file(s) not resolved", len(missing))
		}
	}

	parts := []string{
		pluralize(len(compiled.Metrics), "metric"),
		pluralize(compiled.Weights.Len(), "weight dimension"),
	}
	if compiled.Composite != nil {
		parts = append(parts, "composite of "+pluralize(len(compiled.Composite.Categories), "category"))
	}
	fmt.Fprintln(stdout, checkOK.Render(fmt.Sprintf("✓ %s valid: %s", cfg.Model, strings.Join(parts, ", "))))

	if cfg.Verbose {
		for _, name := range model.MetricNames() {
			fmt.Fprintf(stdout, "  %s %s\n", name, checkDim.Render(compiled.Metrics[name].String()))
		}
		for _, d := range compiled.Weights.Dimensions() {
			detail := pluralize(len(d.Weights), "category")
			if d.IsDecay() {
				detail = pluralize(len(d.Decay), "decay category")
			}
			fmt.Fprintf(stdout, "  %s %s\n", d.Name, checkDim.Render(detail))
		}
		fmt.Fprintf(stdout, "  strategies %s\n", checkDim.Render(strings.Join(normalize.Names(), ", ")))
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
