package tui

import "github.com/charmbracelet/lipgloss"

var (
	lagoon   = lipgloss.Color("#0E7C86")
	coral    = lipgloss.Color("#FF7F50")
	sand     = lipgloss.Color("#F4E3C1")
	muted    = lipgloss.Color("#7A8A99")
	errorRed = lipgloss.Color("#E53935")
)

// Styles groups the lipgloss styles used by the browser view.
type Styles struct {
	Title       lipgloss.Style
	Facet       lipgloss.Style
	FacetActive lipgloss.Style
	FacetFocus  lipgloss.Style
	Header      lipgloss.Style
	Row         lipgloss.Style
	Cursor      lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Detail      lipgloss.Style
	DetailKey   lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(sand).Background(lagoon).Padding(0, 1),
		Facet:       lipgloss.NewStyle().Foreground(muted),
		FacetActive: lipgloss.NewStyle().Foreground(lagoon).Bold(true),
		FacetFocus:  lipgloss.NewStyle().Foreground(coral).Bold(true).Underline(true),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lagoon),
		Row:         lipgloss.NewStyle(),
		Cursor:      lipgloss.NewStyle().Foreground(coral).Bold(true),
		Status:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(errorRed).Bold(true),
		Detail:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lagoon).Padding(0, 1),
		DetailKey:   lipgloss.NewStyle().Foreground(lagoon),
		Help:        lipgloss.NewStyle().Foreground(muted),
	}
}
