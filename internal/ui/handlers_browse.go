package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/catalog"
)

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.browse.searching {
		return m.handleSearchInput(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		m.browse.searching = true
		m.browse.searchInput.SetValue(m.ctrl.Draft())
		m.browse.searchInput.CursorEnd()
		m.browse.searchInput.Focus()
		return m, nil
	case "up", "k":
		if m.browse.cursor > 0 {
			m.browse.cursor--
		}
	case "down", "j":
		if m.browse.cursor < len(m.pageItems())-1 {
			m.browse.cursor++
		}
	case "left", "h", "pgup":
		if m.ctrl.PrevPage() {
			m.browse.cursor = 0
		}
	case "right", "l", "pgdown":
		if m.ctrl.NextPage() {
			m.browse.cursor = 0
		}
	case "home", "g":
		if m.ctrl.ChangePage(1) {
			m.browse.cursor = 0
		}
	case "end", "G":
		if m.ctrl.ChangePage(m.ctrl.TotalPages()) {
			m.browse.cursor = 0
		}
	case "enter":
		items := m.pageItems()
		if m.browse.cursor < len(items) {
			return m.openDetail(items[m.browse.cursor])
		}
	case "f":
		m.openFilters()
	case "c":
		if !m.ctrl.Filters().IsEmpty() {
			m.ctrl.ClearFilters()
			m.browse.cursor = 0
			m.statusMsg = "Filters cleared."
		}
	case "r":
		m.statusMsg = "Refreshing…"
		fetch := m.startFetch()
		return m, tea.Batch(m.spinner.Tick, fetch, m.optionsCmd())
	case "a":
		m.openAddForm()
	case "u":
		m.openUpload()
	}
	return m, nil
}

// handleSearchInput stages every keystroke as the draft; only enter makes it
// effective.
func (m Model) handleSearchInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.browse.searching = false
		m.browse.searchInput.Blur()
		return m, nil
	case "enter":
		m.browse.searching = false
		m.browse.searchInput.Blur()
		m.ctrl.SetSearchTerm(strings.TrimSpace(m.browse.searchInput.Value()))
		term := m.ctrl.SubmitSearch()
		m.browse.cursor = 0
		if term == "" {
			m.statusMsg = "Search cleared."
		} else {
			m.statusMsg = "Search: " + term
		}
		if m.cfg.ServerSearch {
			fetch := m.startFetch()
			return m, tea.Batch(m.spinner.Tick, fetch)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.browse.searchInput, cmd = m.browse.searchInput.Update(msg)
		m.ctrl.SetSearchTerm(m.browse.searchInput.Value())
		return m, cmd
	}
}

func (m Model) pageItems() []catalog.Record {
	return m.ctrl.Snapshot().Items
}

func (m *Model) clampCursor() {
	n := len(m.pageItems())
	if m.browse.cursor >= n {
		m.browse.cursor = n - 1
	}
	if m.browse.cursor < 0 {
		m.browse.cursor = 0
	}
}

func (m Model) openDetail(r catalog.Record) (Model, tea.Cmd) {
	m.state = stateDetail
	m.detail = DetailState{record: r, loading: m.client != nil}
	m.viewport.GotoTop()
	if m.client == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.detailCmd(r.ID))
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		m.state = stateBrowse
		m.detail.loading = false
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
