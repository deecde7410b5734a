package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/api"
	"molecule-browser/internal/config"
	"molecule-browser/internal/infra/logx"
	"molecule-browser/internal/store"
)

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.updateViewportContent()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.state {
		case stateWelcome:
			return m.handleWelcomeKey(msg.String())
		case stateTokenPrompt:
			return m.handleTokenPromptKey(msg)
		case stateValidating:
			return m.handleValidatingKey(msg.String())
		case stateBrowse:
			return m.handleBrowseKey(msg)
		case stateFilters:
			return m.handleFiltersKey(msg)
		case stateDetail:
			return m.handleDetailKey(msg)
		case stateAdd:
			return m.handleAddKey(msg)
		case stateUpload:
			return m.handleUploadKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// reserve for header, state header, pagination bar and footer
		const chrome = 10
		h := m.height - chrome
		if h < 3 {
			h = 3
		}
		m.viewport.Width = m.width
		m.viewport.Height = h

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case fetchMsg:
		return m.handleFetchMsg(msg)

	case optionsMsg:
		if msg.err != nil {
			m.optionsErr = msg.err
			logx.Warnf("filter options unavailable: %v", msg.err)
			return m, nil
		}
		m.optionsErr = nil
		m.options = msg.options
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, store.ErrNoSnapshot) {
				logx.Warnf("snapshot load failed: %v", msg.err)
			}
			return m, nil
		}
		if m.ctrl.Seed(msg.snap.Records) {
			m.fromCache = true
			m.snapshotAt = msg.snap.FetchedAt
			logx.Debugf("seeded %d cached molecules from %s", len(msg.snap.Records), msg.snap.FetchedAt)
		}
		return m, nil

	case snapshotSavedMsg:
		if msg.err != nil {
			logx.Warnf("snapshot save failed: %v", msg.err)
		}
		return m, nil

	case detailMsg:
		if m.state != stateDetail {
			return m, nil
		}
		m.detail.loading = false
		if msg.err != nil {
			m.detail.err = msg.err
			return m, nil
		}
		m.detail.err = nil
		m.detail.record = msg.record
		m.viewport.GotoTop()
		return m, nil

	case createMsg:
		return m.handleCreateMsg(msg)

	case sheetMsg:
		return m.handleSheetMsg(msg)

	case uploadMsg:
		return m.handleUploadMsg(msg)
	}

	return m, nil
}

func (m Model) busy() bool {
	return m.state == stateValidating ||
		m.ctrl.Loading() ||
		m.detail.loading ||
		m.add.submitting ||
		m.upload.uploading
}

func (m Model) handleFetchMsg(msg fetchMsg) (Model, tea.Cmd) {
	if m.state == stateValidating {
		if msg.err != nil && isAuthError(msg.err) {
			m.ctrl.FailFetch(msg.ticket, msg.err)
			m.validateErr = msg.err
			m.statusMsg = "Token rejected: " + describeError(msg.err)
			m.state = stateTokenPrompt
			m.ti.Focus()
			return m, nil
		}
		m.state = stateBrowse
		if msg.err == nil && m.tokenEntered {
			if err := config.Save(m.cfgPath, m.cfg); err != nil {
				logx.Warnf("saving config failed: %v", err)
			} else {
				m.hasConfig = true
				logx.Infof("token saved to %s", m.cfgPath)
			}
			m.tokenEntered = false
		}
	}

	if msg.err != nil {
		if m.ctrl.FailFetch(msg.ticket, msg.err) {
			m.statusMsg = "Loading failed: " + describeError(msg.err) + " (r to retry)"
			logx.Warnf("molecule listing failed: %v", msg.err)
		}
		return m, nil
	}
	if !m.ctrl.CompleteFetch(msg.ticket, msg.records) {
		logx.Debugf("dropped stale listing for ticket %d", msg.ticket)
		return m, nil
	}
	m.fromCache = false
	m.clampCursor()
	m.statusMsg = fmt.Sprintf("%d molecules loaded.", len(msg.records))
	logx.Event(logx.LevelInfo, "molecules loaded", map[string]any{
		"records": len(msg.records),
		"search":  m.ctrl.SearchTerm(),
	})
	if m.cfg.ServerSearch && m.ctrl.SearchTerm() != "" {
		// server-narrowed result, not the full collection
		return m, nil
	}
	return m, m.saveSnapshotCmd(msg.records)
}

// metricsLine summarizes transport counters for the footer.
func (m Model) metricsLine() string {
	if m.client == nil {
		return ""
	}
	return m.client.MetricsSnapshot().Summary()
}

var _ Source = (*api.Client)(nil)
