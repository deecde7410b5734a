package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/infra/logx"
)

func (m Model) quit() (Model, tea.Cmd) {
	m.state = stateQuit
	return m, tea.Quit
}

func (m Model) handleWelcomeKey(key string) (Model, tea.Cmd) {
	switch {
	case key == "q":
		return m.quit()
	case key != "enter":
		return m, nil
	case m.cfg.Token != "":
		return m.connect()
	}
	m.state = stateTokenPrompt
	m.statusMsg = "Please enter your API token."
	return m, nil
}

func (m Model) handleTokenPromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state, m.statusMsg = stateWelcome, "Back to start."
		return m, nil
	case "enter":
		return m.submitToken()
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// submitToken connects with the typed token. It is persisted only once the
// server accepts it.
func (m Model) submitToken() (Model, tea.Cmd) {
	token := strings.TrimSpace(m.ti.Value())
	if token == "" {
		m.statusMsg = "Token is empty."
		return m, nil
	}
	m.cfg.Token, m.tokenEntered = token, true
	return m.connect()
}

func (m Model) handleValidatingKey(key string) (Model, tea.Cmd) {
	if key != "q" {
		return m, nil
	}
	return m.quit()
}

// connect builds the client, then starts the first listing alongside the
// option source and the cached snapshot. A successful listing validates the
// token.
func (m Model) connect() (Model, tea.Cmd) {
	logx.RegisterSecret(m.cfg.Token)
	if m.newClient != nil {
		m.client = m.newClient(m.cfg.Token)
	}
	m.validateErr = nil
	m.state, m.statusMsg = stateValidating, "Connecting…"
	cmds := []tea.Cmd{m.spinner.Tick, m.startFetch(), m.optionsCmd(), m.loadSnapshotCmd()}
	return m, tea.Batch(cmds...)
}
