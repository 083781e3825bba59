package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/render"
)

var outputFormat string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch survey records and print them",
	Long: `Fetch runs one load cycle against the catalog with the configured
filters and prints the displayed subset of the returned rows.

Filters from the config file apply unless --no-defaults is given; any
filter flag overrides the configured value, and an explicitly empty flag
(--site "") clears it.

Example:
  goreef fetch --campagne 2024 --site Ouegoa
  goreef fetch --no-defaults --q Chaetodon --output json`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFilterFlags(fetchCmd)
	fetchCmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, yaml)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext(cmd.Context(), a.log)
	defer stop()

	a.store.LoadData(ctx)
	st := a.store.Snapshot()
	if st.Error != "" {
		return fmt.Errorf("fetch failed: %s", st.Error)
	}

	doc := render.Document{
		Filters: st.Filters.Map(),
		Total:   st.Total,
		Results: st.Filtered,
	}
	return render.Rows(cmd.OutOrStdout(), format, doc, len(st.Rows))
}
