package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gookit/color"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/goreef/internal/types"
)

// Format selects how fetched rows are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Document is the machine-readable shape of one fetch.
type Document struct {
	Filters map[string]string `json:"filters" yaml:"filters"`
	Total   int64             `json:"total_count" yaml:"total_count"`
	Results []types.Record    `json:"results" yaml:"results"`
}

// Rows writes doc in the requested format. Table output adds a summary
// footer using fetched as the number of rows the API returned.
func Rows(w io.Writer, format Format, doc Document, fetched int) error {
	if doc.Results == nil {
		doc.Results = []types.Record{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		if err := Table(w, doc.Results, TableOptions{}); err != nil {
			return err
		}
		return Summary(w, len(doc.Results), fetched, doc.Total)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

var facetKeyStyle = color.Style{color.FgGreen, color.OpBold}

// Facets writes each option list as a heading followed by one value per line.
// Lists named in only are printed; an empty only prints all of them.
func Facets(w io.Writer, lists *orderedmap.OrderedMap[string, []string], only ...string) error {
	for _, key := range lists.Keys() {
		if len(only) > 0 && !slices.Contains(only, key) {
			continue
		}
		values, _ := lists.Get(key)
		if _, err := fmt.Fprintf(w, "%s (%d)\n", facetKeyStyle.Sprint(key), len(values)); err != nil {
			return err
		}
		for _, v := range values {
			if _, err := fmt.Fprintf(w, "  %s\n", v); err != nil {
				return err
			}
		}
	}
	return nil
}
