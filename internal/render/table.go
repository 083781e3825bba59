// Package render prints catalog rows and facet option lists for the CLI.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/goreef/internal/types"
)

// DefaultMaxColumnWidth bounds a single table cell, in terminal cells.
const DefaultMaxColumnWidth = 28

var headerStyle = color.Style{color.FgCyan, color.OpBold}

// Columns returns the column order for rows: facet fields first, then every
// other field in first-seen order.
func Columns(rows []types.Record) []string {
	seen := orderedmap.NewOrderedMap[string, struct{}]()
	for _, f := range types.FacetFields {
		seen.Set(string(f), struct{}{})
	}

	extra := orderedmap.NewOrderedMap[string, struct{}]()
	for _, r := range rows {
		for _, k := range sortedKeys(r) {
			if _, ok := seen.Get(k); ok {
				continue
			}
			extra.Set(k, struct{}{})
		}
	}

	cols := make([]string, 0, seen.Len()+extra.Len())
	cols = append(cols, seen.Keys()...)
	return append(cols, extra.Keys()...)
}

// TableOptions controls Table output.
type TableOptions struct {
	Columns  []string // nil means Columns(rows)
	MaxWidth int      // per cell; <= 0 means DefaultMaxColumnWidth
}

// Table writes rows as an aligned text table. Wide characters are measured
// in terminal cells and long cells are truncated with "…".
func Table(w io.Writer, rows []types.Record, opts TableOptions) error {
	cols := opts.Columns
	if cols == nil {
		cols = Columns(rows)
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxColumnWidth
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if raw, ok := row.Get(c); ok {
				v = runewidth.Truncate(cleanCell(types.ToString(raw)), maxWidth, "…")
			}
			cells[r][i] = v
			if cw := runewidth.StringWidth(v); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headerStyle.Sprint(runewidth.FillRight(c, widths[i]))
		rule[i] = strings.Repeat("-", widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, "  ")); err != nil {
		return err
	}

	for _, line := range cells {
		padded := make([]string, len(line))
		for i, v := range line {
			padded[i] = runewidth.FillRight(v, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes the one-line row count footer.
func Summary(w io.Writer, shown, fetched int, total int64) error {
	if shown == fetched {
		_, err := fmt.Fprintf(w, "%d of %d records\n", shown, total)
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d records shown (%d fetched)\n", shown, total, fetched)
	return err
}

func cleanCell(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
}

func sortedKeys(r types.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	// map order is random; keep output stable
	slices.Sort(keys)
	return keys
}
