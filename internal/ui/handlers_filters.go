package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/catalog"
)

func (m *Model) openFilters() {
	m.state = stateFilters
	m.filters.draft = m.ctrl.Filters()
	m.filters.field = 0
	m.filters.cursor = 0
	m.filters.typing = false
	m.filters.input.Blur()
	m.filters.query = make(map[catalog.Field]string)
}

func (m Model) currentField() catalog.Field {
	return catalog.Fields[m.filters.field]
}

// filterRows are the entries listed for the current field: narrowed options,
// or the keywords for the activity field.
func (m Model) filterRows() []string {
	f := m.currentField()
	if f.Kind() == catalog.KindKeywords {
		return m.filters.draft.Activity
	}
	return narrowOptions(m.filters.query[f], m.options.For(f), m.filterCfg)
}

func (m Model) isSelected(f catalog.Field, value string) bool {
	v := catalog.Normalize(value)
	for _, s := range m.filters.draft.Values(f) {
		if catalog.Normalize(s) == v {
			return true
		}
	}
	return false
}

// toggle adds value to the draft selection of f, or removes it.
func (m *Model) toggle(f catalog.Field, value string) {
	cur := m.filters.draft.Values(f)
	next := make([]string, 0, len(cur)+1)
	found := false
	for _, s := range cur {
		if catalog.Normalize(s) == catalog.Normalize(value) {
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		next = append(next, value)
	}
	m.filters.draft = m.filters.draft.With(f, next)
}

func (m Model) handleFiltersKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.filters.typing {
		return m.handleFilterInput(msg)
	}
	f := m.currentField()
	rows := m.filterRows()

	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.statusMsg = "Filter changes discarded."
		return m, nil
	case "enter":
		m.ctrl.ApplyFilters(m.filters.draft)
		m.browse.cursor = 0
		m.state = stateBrowse
		m.statusMsg = "Filters applied."
		return m, nil
	case "c":
		m.ctrl.ClearFilters()
		m.browse.cursor = 0
		m.state = stateBrowse
		m.statusMsg = "Filters cleared."
		return m, nil
	case "tab", "right":
		m.filters.field = (m.filters.field + 1) % len(catalog.Fields)
		m.filters.cursor = 0
	case "shift+tab", "left":
		m.filters.field = (m.filters.field - 1 + len(catalog.Fields)) % len(catalog.Fields)
		m.filters.cursor = 0
	case "up", "k":
		if m.filters.cursor > 0 {
			m.filters.cursor--
		}
	case "down", "j":
		if m.filters.cursor < len(rows)-1 {
			m.filters.cursor++
		}
	case " ":
		if f.Kind() != catalog.KindKeywords && m.filters.cursor < len(rows) {
			m.toggle(f, rows[m.filters.cursor])
		}
	case "/", "a":
		m.filters.typing = true
		if f.Kind() == catalog.KindKeywords {
			m.filters.input.Placeholder = "keyword, e.g. antimicrobial"
			m.filters.input.SetValue("")
		} else {
			m.filters.input.Placeholder = "narrow " + strings.ToLower(f.String()) + " options…"
			m.filters.input.SetValue(m.filters.query[f])
		}
		m.filters.input.CursorEnd()
		m.filters.input.Focus()
	case "x", "delete", "backspace":
		if f.Kind() == catalog.KindKeywords && m.filters.cursor < len(rows) {
			kw := append(catalog.Keywords(nil), m.filters.draft.Activity[:m.filters.cursor]...)
			kw = append(kw, m.filters.draft.Activity[m.filters.cursor+1:]...)
			m.filters.draft.Activity = kw
			if m.filters.cursor >= len(kw) && m.filters.cursor > 0 {
				m.filters.cursor--
			}
		}
	case "X":
		m.filters.draft = m.filters.draft.With(f, nil)
		m.filters.cursor = 0
	}
	return m, nil
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.currentField()
	switch msg.String() {
	case "esc":
		m.filters.typing = false
		m.filters.input.Blur()
		return m, nil
	case "enter":
		m.filters.typing = false
		m.filters.input.Blur()
		if f.Kind() == catalog.KindKeywords {
			if kw := strings.TrimSpace(m.filters.input.Value()); kw != "" {
				m.filters.draft.Activity = append(append(catalog.Keywords(nil), m.filters.draft.Activity...), kw)
				m.filters.cursor = len(m.filters.draft.Activity) - 1
			}
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.filters.input, cmd = m.filters.input.Update(msg)
		if f.Kind() != catalog.KindKeywords {
			m.filters.query[f] = m.filters.input.Value()
			m.filters.cursor = 0
		}
		return m, cmd
	}
}
