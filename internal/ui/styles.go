package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
const (
	colorLeaf   = lipgloss.Color("#2E8B57")
	colorTeal   = lipgloss.Color("#3AC4BA")
	colorGood   = lipgloss.Color("#10B981")
	colorAmber  = lipgloss.Color("#F59E0B")
	colorBad    = lipgloss.Color("#EF4444")
	colorCursor = lipgloss.Color("#2A2B3D")
	colorBar    = lipgloss.Color("#FFAB78")
	colorWhite  = lipgloss.Color("#FFFFFF")
	colorDim    = lipgloss.Color("241")
	colorHelp   = lipgloss.Color("245")
	colorRule   = lipgloss.Color("240")
	colorOff    = lipgloss.Color("238")
	colorText   = lipgloss.Color("252")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	titleStyle    = fg(colorLeaf).Bold(true).Underline(true)
	subtitleStyle = fg(colorTeal).Italic(true)
	subtleStyle   = fg(colorDim)
	helpStyle     = fg(colorHelp).Italic(true)
	dividerStyle  = fg(colorRule)
	markStyle     = fg(colorTeal)
	labelStyle    = fg(colorHelp).Width(22)
	focusStyle    = lipgloss.NewStyle().Bold(true)
	centeredStyle = lipgloss.NewStyle().Align(lipgloss.Center)

	okStyle    = fg(colorGood).Bold(true)
	warnStyle  = fg(colorAmber).Bold(true)
	errorStyle = fg(colorBad).Bold(true)

	welcomeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLeaf).
			Padding(1, 2).
			Margin(1, 0)
	listHeaderStyle = fg(colorLeaf).Bold(true).MarginBottom(1)

	// browse rows
	cursorLineStyle = lipgloss.NewStyle().Background(colorCursor)
	cursorBarStyle  = lipgloss.NewStyle().Background(colorBar)

	// page bar
	pageStyle         = fg(colorText).Padding(0, 1)
	pageActiveStyle   = fg(colorWhite).Background(colorLeaf).Bold(true).Padding(0, 1)
	pageDisabledStyle = fg(colorOff).Padding(0, 1)
)

// renderFooter stacks an optional status line above the help lines.
func renderFooter(status string, help ...string) string {
	lines := make([]string, 0, len(help)+1)
	if status != "" {
		lines = append(lines, subtleStyle.Render(status))
	}
	for _, h := range help {
		lines = append(lines, helpStyle.Render(h))
	}
	return strings.Join(lines, "\n")
}
