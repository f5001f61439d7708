package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/pkg/config"
	"github.com/lawrencelj/mdsearch/pkg/logger"
)

var (
	flagConfig    string
	flagRoot      string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mdsearch",
	Short: "Full-text search over markdown trees",
	Long: `mdsearch indexes a directory of markdown files into an in-memory
inverted index and searches it: one-shot from the command line, interactively
in a terminal UI, or as an HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file (defaults apply without one)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "directory to index (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text or json")
}

// setup loads configuration, applies flag overrides and initialises
// logging. Every subcommand calls it first.
func setup() (*config.Config, error) {
	// A .env file is optional; MDSEARCH_* variables work either way.
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.Source.Root = flagRoot
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Debug("configuration loaded", "config", flagConfig, "root", cfg.Source.Root)
	return cfg, nil
}
