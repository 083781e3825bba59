package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/render"
	"github.com/dbsmedya/goreef/internal/store"
	"github.com/dbsmedya/goreef/internal/types"
)

var facetFields []string

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the distinct facet values of the fetched rows",
	Long: `Facets fetches one page with the current filters and prints the
sorted distinct values of each facet found in it: campagnes, sites,
stations, transects and types.

--field accepts either a list name (sites) or a field name (site) and
can be repeated.

Example:
  goreef facets --no-defaults --field site --field campagne`,
	RunE: runFacets,
}

func init() {
	rootCmd.AddCommand(facetsCmd)
	addFilterFlags(facetsCmd)
	facetsCmd.Flags().StringSliceVar(&facetFields, "field", nil,
		"Only print these option lists (repeatable)")
}

// optionKeys resolves --field values to option list keys.
func optionKeys(names []string) ([]string, error) {
	known := map[string]bool{
		store.OptionCampagnes: true,
		store.OptionSites:     true,
		store.OptionStations:  true,
		store.OptionTransects: true,
		store.OptionTypes:     true,
	}

	keys := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if known[n] {
			keys = append(keys, n)
			continue
		}
		if f, ok := types.ParseField(n); ok {
			if key, ok := store.OptionKey(f); ok {
				keys = append(keys, key)
				continue
			}
		}
		return nil, fmt.Errorf("unknown facet %q", n)
	}
	return keys, nil
}

func runFacets(cmd *cobra.Command, args []string) error {
	keys, err := optionKeys(facetFields)
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

	return render.Facets(cmd.OutOrStdout(), st.Options, keys...)
}
