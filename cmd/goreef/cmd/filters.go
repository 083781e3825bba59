package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/config"
	"github.com/dbsmedya/goreef/internal/types"
)

// Filter flags shared by the data commands
var (
	filterCampagne string
	filterSite     string
	filterStation  string
	filterTransect string
	filterType     string
	filterQuery    string
	noDefaults     bool
)

// filterFlagFields maps each filter flag to the field it sets.
var filterFlagFields = []struct {
	flag  string
	field types.Field
	value *string
}{
	{"campagne", types.FieldCampagne, &filterCampagne},
	{"site", types.FieldSite, &filterSite},
	{"station", types.FieldStation, &filterStation},
	{"transect", types.FieldTransect, &filterTransect},
	{"type", types.FieldTypePoissons, &filterType},
	{"q", types.FieldQ, &filterQuery},
}

func addFilterFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&filterCampagne, "campagne", "", "Survey campaign (e.g. 2024)")
	f.StringVar(&filterSite, "site", "", "Survey site (e.g. Ouegoa)")
	f.StringVar(&filterStation, "station", "", "Station within the site")
	f.StringVar(&filterTransect, "transect", "", "Transect number (0 and \"\" are valid values; use --no-defaults to drop a configured one)")
	f.StringVar(&filterType, "type", "", "Fish type (type_poissons)")
	f.StringVar(&filterQuery, "q", "", "Free-text search")
	f.BoolVar(&noDefaults, "no-defaults", false, "Ignore the filters configured in the config file")
}

// resolveFilters returns the start-up FilterSet: the configured filters
// (unless --no-defaults) with every explicitly given flag applied on top.
// An explicitly empty flag clears that filter, except for --transect where
// the empty string is itself a valid transect.
func resolveFilters(c *cobra.Command, cfg *config.Config) types.FilterSet {
	var fs types.FilterSet
	if !noDefaults {
		fs = cfg.FilterSet()
	}

	change := types.FilterChange{}
	for _, ff := range filterFlagFields {
		flag := c.Flags().Lookup(ff.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		if *ff.value == "" && ff.field != types.FieldTransect {
			change[ff.field] = nil
		} else {
			change[ff.field] = types.Str(*ff.value)
		}
	}
	return fs.Merge(change)
}
