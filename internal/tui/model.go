// Package tui is an interactive terminal browser over a store.Store.
package tui

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbsmedya/goreef/internal/store"
	"github.com/dbsmedya/goreef/internal/types"
)

// refreshedMsg is sent when a store call returns; the model then re-reads the snapshot.
type refreshedMsg struct{}

// Model is the bubbletea model for the browse command.
type Model struct {
	ctx    context.Context
	store  *store.Store
	styles Styles

	state    store.State
	cursor   int
	offset   int
	focus    int // index into types.FacetFields
	recenter uint64
	pending  bool

	width, height int
	quitting      bool
}

// New creates a Model over s. Blocking store calls run inside tea.Cmds and honour ctx.
func New(ctx context.Context, s *store.Store) Model {
	return Model{
		ctx:    ctx,
		store:  s,
		styles: DefaultStyles(),
		state:  s.Snapshot(),
		height: 24,
		width:  100,
	}
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// State returns the last snapshot the model rendered from.
func (m Model) State() store.State { return m.state }

// Cursor returns the highlighted row index within the displayed rows.
func (m Model) Cursor() int { return m.cursor }

// FocusedField returns the facet the left/right keys currently cycle.
func (m Model) FocusedField() types.Field { return types.FacetFields[m.focus] }

func (m Model) load() tea.Cmd {
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		s.LoadData(ctx)
		return refreshedMsg{}
	}
}

func (m Model) apply(change types.FilterChange) tea.Cmd {
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		s.ApplyFilters(ctx, change)
		return refreshedMsg{}
	}
}

// Update handles key presses, window resizes and store refreshes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
		return m, nil

	case refreshedMsg:
		m.pending = false
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.scroll()

	case "down", "j":
		if m.cursor < len(m.state.Filtered)-1 {
			m.cursor++
		}
		m.scroll()

	case "home", "g":
		m.cursor = 0
		m.scroll()

	case "end", "G":
		m.cursor = max(len(m.state.Filtered)-1, 0)
		m.scroll()

	case "enter", " ":
		if m.cursor < len(m.state.Filtered) {
			m.store.Select(m.state.Filtered[m.cursor])
			m.sync()
		}

	case "esc":
		m.store.ClearSelection()
		m.sync()

	case "tab":
		m.focus = (m.focus + 1) % len(types.FacetFields)

	case "shift+tab":
		m.focus = (m.focus + len(types.FacetFields) - 1) % len(types.FacetFields)

	case "right", "l":
		return m.cycle(1)

	case "left", "h":
		return m.cycle(-1)

	case "x", "backspace", "delete":
		f := m.FocusedField()
		if m.state.Filters.Value(f) == nil {
			return m, nil
		}
		return m.startApply(types.FilterChange{f: nil})

	case "r":
		m.pending = true
		return m, m.load()

	case "c":
		m.store.TriggerRecenter()
		m.sync()
	}
	return m, nil
}

// cycle moves the focused facet to the next or previous value of its option
// list. Stepping past either end clears the facet.
func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	f := m.FocusedField()
	key, _ := store.OptionKey(f)
	values := m.state.Option(key)
	if len(values) == 0 {
		return m, nil
	}

	// -1 stands for "no filter"
	idx := -1
	if cur := m.state.Filters.Value(f); cur != nil {
		idx = slices.Index(values, *cur)
	}
	idx += step
	switch {
	case idx < -1:
		idx = len(values) - 1
	case idx >= len(values):
		idx = -1
	}

	var next *string
	if idx >= 0 {
		next = types.Str(values[idx])
	}
	return m.startApply(types.FilterChange{f: next})
}

func (m Model) startApply(change types.FilterChange) (tea.Model, tea.Cmd) {
	m.pending = true
	m.state.Filters = m.state.Filters.Merge(change)
	return m, m.apply(change)
}

// sync re-reads the store and keeps the cursor in range. A new recenter
// tick moves the cursor onto the selection, or to the top.
func (m *Model) sync() {
	m.state = m.store.Snapshot()

	if m.state.RecenterTick != m.recenter {
		m.recenter = m.state.RecenterTick
		m.cursor = 0
		if m.state.Selected != nil {
			for i, r := range m.state.Filtered {
				if equalRecord(r, m.state.Selected) {
					m.cursor = i
					break
				}
			}
		}
		m.offset = max(m.cursor-m.visibleRows()/2, 0)
	}

	if m.cursor >= len(m.state.Filtered) {
		m.cursor = max(len(m.state.Filtered)-1, 0)
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	n := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRows is the number of table rows that fit beside the chrome.
func (m Model) visibleRows() int {
	const chrome = 8
	return max(m.height-chrome, 3)
}
