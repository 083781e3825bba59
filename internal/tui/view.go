package tui

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/goreef/internal/types"
)

const (
	title        = "goreef · rorc_poissons_recifaux"
	maxCellWidth = 24
	helpText     = "↑/↓ move  enter select  esc clear  tab facet  ←/→ value  x unset  r reload  c recenter  q quit"
)

func equalRecord(a, b types.Record) bool {
	return reflect.DeepEqual(a, b)
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.filterBar())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n\n")
	b.WriteString(m.table())

	if m.state.Selected != nil {
		b.WriteString("\n")
		b.WriteString(m.detail())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(helpText))
	return b.String()
}

func (m Model) filterBar() string {
	parts := make([]string, 0, len(types.AllFields))
	for i, f := range types.AllFields {
		v := m.state.Filters.Value(f)
		if f == types.FieldQ && v == nil {
			continue
		}
		text := string(f) + "=*"
		style := m.styles.Facet
		if v != nil {
			text = string(f) + "=" + *v
			style = m.styles.FacetActive
		}
		if i == m.focus && f != types.FieldQ {
			style = m.styles.FacetFocus
		}
		parts = append(parts, style.Render(text))
	}
	return strings.Join(parts, "  ")
}

func (m Model) status() string {
	switch {
	case m.pending || m.state.Loading:
		return m.styles.Status.Render("Loading…")
	case m.state.Error != "":
		return m.styles.Error.Render("Error: " + m.state.Error)
	default:
		return m.styles.Status.Render(fmt.Sprintf("%d of %d records (%d fetched)",
			len(m.state.Filtered), m.state.Total, len(m.state.Rows)))
	}
}

func (m Model) table() string {
	rows := m.state.Filtered
	if len(rows) == 0 {
		return m.styles.Status.Render("No records.") + "\n"
	}

	end := min(m.offset+m.visibleRows(), len(rows))
	window := rows[m.offset:end]

	cols := types.FacetFields
	widths := make([]int, len(cols))
	cells := make([][]string, len(window))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(string(c))
	}
	for r, row := range window {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v := runewidth.Truncate(row.String(string(c)), maxCellWidth, "…")
			cells[r][i] = v
			widths[i] = max(widths[i], runewidth.StringWidth(v))
		}
	}

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = runewidth.FillRight(string(c), widths[i])
	}
	b.WriteString("    ")
	b.WriteString(m.styles.Header.Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for r, line := range cells {
		idx := m.offset + r
		padded := make([]string, len(line))
		for i, v := range line {
			padded[i] = runewidth.FillRight(v, widths[i])
		}

		pointer, style := "  ", m.styles.Row
		if idx == m.cursor {
			pointer, style = "> ", m.styles.Cursor
		}
		mark := "  "
		if m.state.Selected != nil && equalRecord(window[r], m.state.Selected) {
			mark = "● "
		}
		b.WriteString(pointer + mark)
		b.WriteString(style.Render(strings.TrimRight(strings.Join(padded, "  "), " ")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) detail() string {
	keys := make([]string, 0, len(m.state.Selected))
	for k := range m.state.Selected {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, m.styles.DetailKey.Render(k+":")+" "+m.state.Selected.String(k))
	}
	width := max(m.width-4, 20)
	return m.styles.Detail.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
