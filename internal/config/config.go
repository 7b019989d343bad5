package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dotcommander/farol/internal/logging"
)

// DefaultModelFile is the model file looked up when none is configured.
const DefaultModelFile = "farol.yaml"

// Config represents the farol run settings
type Config struct {
	Model     string `mapstructure:"model" json:"model"`
	DataDir   string `mapstructure:"dataDir" json:"dataDir,omitempty"`
	Format    string `mapstructure:"format" json:"format"`
	Output    string `mapstructure:"output" json:"output,omitempty"`
	Quiet     bool   `mapstructure:"quiet" json:"quiet"`
	Verbose   bool   `mapstructure:"verbose" json:"verbose"`
	LogLevel  string `mapstructure:"logLevel" json:"logLevel"`
	LogFormat string `mapstructure:"logFormat" json:"logFormat"`
	Precision int    `mapstructure:"precision" json:"precision"`
}

// ConfigFiles are the run settings files looked up in the working directory.
var ConfigFiles = []string{".farolrc.json", ".farolrc.yaml", ".farolrc.yml"}

// LoadConfig loads configuration from various sources
func LoadConfig(modelPath string) (*Config, error) {
	viper.SetDefault("model", DefaultModelFile)
	viper.SetDefault("dataDir", "")
	viper.SetDefault("format", "console")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "text")
	viper.SetDefault("precision", 2)

	// A settings file chosen by the caller has already been read.
	if viper.ConfigFileUsed() == "" {
		for _, path := range ConfigFiles {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}

	viper.SetEnvPrefix("FAROL")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if modelPath != "" {
		config.Model = modelPath
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}

	if config.LogFormat != "text" && config.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s. Must be 'text' or 'json'", config.LogFormat)
	}

	if config.Precision < -1 {
		return fmt.Errorf("precision must be -1 (no rounding) or at least 0")
	}

	if config.Quiet && config.Verbose {
		return fmt.Errorf("quiet and verbose are mutually exclusive")
	}

	return nil
}

// SaveConfig saves the current configuration to a file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
