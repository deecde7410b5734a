package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/api"
	"molecule-browser/internal/catalog"
	"molecule-browser/internal/infra/logx"
	"molecule-browser/internal/ingest"
)

func (m *Model) openAddForm() {
	m.state = stateAdd
	m.add.focus = 0
	m.add.errs = nil
	m.add.serverErr = nil
	m.add.submitting = false
	for i := range m.add.inputs {
		m.add.inputs[i].SetValue("")
		m.add.inputs[i].Blur()
	}
	m.add.inputs[0].Focus()
}

func (m Model) formRecord() catalog.NewRecord {
	v := func(i int) string { return strings.TrimSpace(m.add.inputs[i].Value()) }
	return catalog.NewRecord{
		Name:      v(0),
		SMILES:    v(1),
		Reference: v(2),
		PlantName: v(3),
		Database:  v(4),
		Origin:    v(5),
		Activity:  v(6),
	}
}

func (m *Model) focusAdd(i int) {
	n := len(m.add.inputs)
	m.add.inputs[m.add.focus].Blur()
	m.add.focus = (i + n) % n
	m.add.inputs[m.add.focus].Focus()
}

func (m Model) handleAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.add.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.statusMsg = "Add cancelled."
		return m, nil
	case "tab", "down":
		m.focusAdd(m.add.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusAdd(m.add.focus - 1)
		return m, nil
	case "enter":
		if m.add.focus < len(m.add.inputs)-1 {
			m.focusAdd(m.add.focus + 1)
			return m, nil
		}
		return m.submitAdd()
	case "ctrl+s":
		return m.submitAdd()
	}
	var cmd tea.Cmd
	m.add.inputs[m.add.focus], cmd = m.add.inputs[m.add.focus].Update(msg)
	return m, cmd
}

func (m Model) submitAdd() (Model, tea.Cmd) {
	rec := m.formRecord()
	m.add.serverErr = nil
	if fe := ingest.Validate(rec); fe != nil {
		m.add.errs = fe
		m.statusMsg = "Please fix the highlighted fields."
		return m, nil
	}
	m.add.errs = nil
	if m.client == nil {
		m.add.serverErr = api.ErrNoToken
		return m, nil
	}
	m.add.submitting = true
	m.statusMsg = "Submitting…"
	return m, tea.Batch(m.spinner.Tick, m.createCmd(rec))
}

func (m Model) handleCreateMsg(msg createMsg) (Model, tea.Cmd) {
	m.add.submitting = false
	if msg.err != nil {
		var apiErr *api.APIError
		if errors.As(msg.err, &apiErr) && len(apiErr.Fields) > 0 {
			m.add.errs = ingest.FieldErrors{}
			for k, v := range apiErr.Fields {
				m.add.errs[k] = strings.Join(v, " ")
			}
		}
		m.add.serverErr = msg.err
		m.statusMsg = "Create failed: " + describeError(msg.err)
		logx.Warnf("create molecule failed: %v", msg.err)
		return m, nil
	}
	m.state = stateBrowse
	m.statusMsg = fmt.Sprintf("Created %q (id %d).", msg.record.Name, msg.record.ID)
	logx.Infof("created molecule %d", msg.record.ID)
	fetch := m.startFetch()
	return m, tea.Batch(m.spinner.Tick, fetch, m.optionsCmd())
}
