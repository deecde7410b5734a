package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "Molecule Browser"

func (m Model) View() string {
	switch m.state {
	case stateQuit:
		return ""
	case stateBrowse:
		return m.framed(m.renderBrowseHeader(), m.renderBrowseFooter())
	case stateDetail:
		return m.framed(m.renderDetailHeader(),
			renderFooter(m.detailStatus(), "↑/↓ PgUp/PgDn: scroll  •  Esc: back"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.screenBody())
}

// framed lays a scrollable viewport between a state header and footer.
func (m Model) framed(top, bottom string) string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), top, m.viewport.View(), bottom)
}

// screenBody renders the states that do not scroll.
func (m Model) screenBody() string {
	switch m.state {
	case stateWelcome:
		return m.viewWelcome()
	case stateTokenPrompt:
		return m.viewTokenPrompt()
	case stateValidating:
		return m.viewValidating()
	case stateFilters:
		return m.viewFilters()
	case stateAdd:
		return m.viewAdd()
	case stateUpload:
		return m.viewUpload()
	}
	return ""
}

func (m Model) renderHeader() string {
	rule := strings.Repeat("─", max(10, m.width-2))
	return titleStyle.Render(appTitle) + "\n" + dividerStyle.Render(rule) + "\n"
}
