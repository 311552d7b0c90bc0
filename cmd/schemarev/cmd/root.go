package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemarev/schemarev/internal/config"
	"github.com/schemarev/schemarev/internal/logger"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile       string
	logLevel      string
	logFormat     string
	minConfidence float64
)

var rootCmd = &cobra.Command{
	Use:   "schemarev",
	Short: "PostgreSQL schema reverse-engineering toolkit",
	Long: `schemarev reads PostgreSQL DDL and PL/pgSQL dumps and recovers a
canonical entity model with confidence scores.

Features:
  - Specialized parsers for CTEs, exception blocks, dynamic SQL,
    control flow, window functions, FILTER aggregates and cursors
  - Vocabulary/instance table pairing and translation table merging
  - Per-parser success rate metrics
  - Optional pattern library backed by Postgres with vector search`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().Float64Var(&minConfidence, "min-confidence", 0,
		"Override minimum confidence for emitted entities (0..1)")
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if minConfidence > 0 {
		cfg.Engine.MinConfidence = minConfidence
	}
	return cfg, nil
}

// newLogger builds the process logger from the effective config.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
