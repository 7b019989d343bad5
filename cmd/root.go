package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/output"
)

var (
	configFile   string
	modelPath    string
	dataDir      string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	logLevel     string
	logFormat    string
	precision    int
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// stdout receives reports; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "farol",
	Short: "Farol - operational scoring for branches and service points",
	Long: `Farol turns raw operational metrics (maintenance counts, consumption indices,
uptime, inspection outcomes) into 0-10 scores, combines them into weighted
category and composite scores, and classifies every record as red, yellow or green.

Scoring rules live in a model file (farol.yaml by default): metric definitions,
weight dimensions and the composite. Run settings come from flags, FAROL_*
environment variables and .farolrc.json/.yaml/.yml.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = output.Version
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Run settings file (default .farolrc.json|yaml|yml)")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "", "Scoring model file (default farol.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory category files are resolved against (default .)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Report format (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write the result table to this file (.csv, .json, .yaml, .xlsx)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().IntVar(&precision, "precision", 2, "Decimal places for scores (-1 disables rounding)")

	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("dataDir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logFormat", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("precision", rootCmd.PersistentFlags().Lookup("precision"))
}

func initConfig() {
	paths := config.ConfigFiles
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				exitFunc(1)
			}
			return
		}
	}
	if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file: %s not found\n", configFile)
		exitFunc(1)
	}
}
