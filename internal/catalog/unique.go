package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dbsmedya/goreef/internal/types"
)

// sortLanguage drives option ordering; site names are French.
var sortLanguage = language.French

// UniqueValues returns the distinct string forms of field across rows,
// skipping missing and null values, sorted with a locale-aware collation.
// The result is never nil.
func UniqueValues(rows []types.Record, field string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, r := range rows {
		v, ok := r.Get(field)
		if !ok {
			continue
		}
		s := types.ToString(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(sortLanguage)
	slices.SortFunc(out, func(a, b string) int {
		if n := c.CompareString(a, b); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})
	return out
}
