package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/config"
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
	baseURL       string
	pageLimit     int
	displayCap    int
	metricsListen string
)

var rootCmd = &cobra.Command{
	Use:   "goreef",
	Short: "Reef-fish survey catalog client",
	Long: `goreef queries the New Caledonia reef-fish survey dataset
(rorc_poissons_recifaux on data.gouv.nc) and keeps the filter selection,
the fetched rows and the derived facet option lists consistent.

Features:
  - Faceted filtering by campagne, site, station, transect and fish type
  - Free-text search
  - Table, JSON and YAML output
  - Interactive terminal browser
  - Export of a fetched page into MySQL, SQLite or PostgreSQL`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "goreef.yaml",
		"Path to configuration file (built-in defaults when the default file is missing)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Catalog overrides
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "",
		"Override the catalog records endpoint")
	rootCmd.PersistentFlags().IntVar(&pageLimit, "limit", 0,
		"Override the number of rows requested per fetch")
	rootCmd.PersistentFlags().IntVar(&displayCap, "display-cap", 0,
		"Override the number of rows displayed")

	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel      string
	LogFormat     string
	BaseURL       string
	PageSize      int
	DisplayCap    int
	MetricsListen string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		BaseURL:       baseURL,
		PageSize:      pageLimit,
		DisplayCap:    displayCap,
		MetricsListen: metricsListen,
	}
}

// loadConfig reads the config file, applies CLI overrides and validates the
// result. A missing file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	required := false
	if f := cmd.Flags().Lookup("config"); f != nil {
		required = f.Changed
	}

	cfg, err := config.LoadOrDefault(GetConfigFile(), required)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	o := GetCLIOverrides()
	cfg.ApplyOverrides(o.LogLevel, o.LogFormat, o.BaseURL, o.PageSize, o.DisplayCap, o.MetricsListen)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
