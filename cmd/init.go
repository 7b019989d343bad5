package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/farol/internal/config"
)

var (
	initPath  string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a run settings file with the current settings",
	Long: `The init command writes the effective run settings (defaults, flags and
FAROL_* environment variables merged) to .farolrc.json so later runs pick
them up. An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runInit)
	},
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", config.ConfigFiles[0], "Settings file to write")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing settings file")
	rootCmd.AddCommand(initCmd)
}

func runInit() error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(initPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", initPath)
	}
	if err := config.SaveConfig(cfg, initPath); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(stdout, "Wrote %s\n", initPath)
	}
	return nil
}
