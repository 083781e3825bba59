package store

import (
	"slices"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/goreef/internal/catalog"
	"github.com/dbsmedya/goreef/internal/types"
)

// OptionLists maps an option key to the sorted distinct values of its facet.
type OptionLists = orderedmap.OrderedMap[string, []string]

// Option list keys, in display order.
const (
	OptionCampagnes = "campagnes"
	OptionSites     = "sites"
	OptionStations  = "stations"
	OptionTransects = "transects"
	OptionTypes     = "types"
)

var optionFields = []struct {
	key   string
	field types.Field
}{
	{OptionCampagnes, types.FieldCampagne},
	{OptionSites, types.FieldSite},
	{OptionStations, types.FieldStation},
	{OptionTransects, types.FieldTransect},
	{OptionTypes, types.FieldTypePoissons},
}

// OptionKey returns the option list key populated from field.
func OptionKey(field types.Field) (string, bool) {
	for _, of := range optionFields {
		if of.field == field {
			return of.key, true
		}
	}
	return "", false
}

func buildOptions(rows []types.Record) *OptionLists {
	opts := orderedmap.NewOrderedMap[string, []string]()
	for _, of := range optionFields {
		opts.Set(of.key, catalog.UniqueValues(rows, string(of.field)))
	}
	return opts
}

func cloneOptions(src *OptionLists) *OptionLists {
	dst := orderedmap.NewOrderedMap[string, []string]()
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		dst.Set(k, slices.Clone(v))
	}
	return dst
}
