package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/catalog"
	"github.com/dbsmedya/goreef/internal/config"
	"github.com/dbsmedya/goreef/internal/database"
	"github.com/dbsmedya/goreef/internal/types"
)

var pingExport bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and print the effective settings",
	Long: `Validate loads the configuration file, applies CLI overrides and
checks every section.

Checks performed:
  - Configuration syntax and required fields
  - Catalog endpoint URL and page size
  - Export driver, table name and connection settings
  - Export database connectivity (with --ping)

Example:
  goreef validate --config goreef.yaml --ping`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addFilterFlags(validateCmd)
	validateCmd.Flags().BoolVar(&pingExport, "ping", false,
		"Also connect to the export database")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateExport(); err != nil {
		return err
	}

	filters := resolveFilters(cmd, cfg)
	client := catalog.New(cfg.API.BaseURL)
	requestURL, err := client.RecordsURL(filters, cfg.API.PageSize)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(out, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(out, "Endpoint: %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "Page size: %d, display cap: %d\n", cfg.API.PageSize, cfg.Display.Cap)
	fmt.Fprintf(out, "Filters: %s\n", describeFilters(filters.Map()))
	fmt.Fprintf(out, "Request: %s\n", requestURL)
	fmt.Fprintf(out, "Export: %s table %s\n", cfg.Export.Driver, cfg.Export.Table)
	if cfg.Metrics.Listen != "" {
		fmt.Fprintf(out, "Metrics: %s%s\n", cfg.Metrics.Listen, cfg.Metrics.Path)
	}

	if pingExport {
		if err := pingDatabase(cmd.Context(), &cfg.Export); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export database: reachable\n")
	}

	fmt.Fprintf(out, "\nConfiguration is valid.\n")
	return nil
}

func pingDatabase(ctx context.Context, cfg *config.ExportConfig) error {
	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()
	return dbManager.Ping(ctx)
}

func describeFilters(m map[string]string) string {
	if len(m) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(m))
	for _, f := range types.AllFields {
		if v, ok := m[string(f)]; ok {
			parts = append(parts, fmt.Sprintf("%s=%q", f, v))
		}
	}
	return strings.Join(parts, " ")
}
