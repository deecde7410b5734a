package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/api"
	"molecule-browser/internal/infra/logx"
	"molecule-browser/internal/ingest"
)

func (m *Model) openUpload() {
	m.state = stateUpload
	m.upload.path = ""
	m.upload.sheet = nil
	m.upload.rowErrs = nil
	m.upload.err = nil
	m.upload.message = ""
	m.upload.uploading = false
	m.upload.input.SetValue("")
	m.upload.input.Focus()
}

// ready reports whether a checked sheet is waiting for confirmation.
func (u UploadState) ready() bool {
	return u.sheet != nil && len(u.rowErrs) == 0 && u.err == nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.upload.uploading {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.upload.input.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.upload.input.Value())
		if path == "" {
			m.upload.err = errors.New("enter the path of an .xlsx file")
			return m, nil
		}
		if m.upload.ready() && path == m.upload.path {
			if m.client == nil {
				m.upload.err = api.ErrNoToken
				return m, nil
			}
			m.upload.uploading = true
			m.statusMsg = "Uploading…"
			return m, tea.Batch(m.spinner.Tick, m.uploadCmd(path))
		}
		m.upload.sheet = nil
		m.upload.rowErrs = nil
		m.upload.err = nil
		m.upload.message = ""
		return m, parseSheetCmd(path)
	}
	var cmd tea.Cmd
	m.upload.input, cmd = m.upload.input.Update(msg)
	return m, cmd
}

func (m Model) handleSheetMsg(msg sheetMsg) (Model, tea.Cmd) {
	if m.state != stateUpload {
		return m, nil
	}
	m.upload.path = msg.path
	if msg.err != nil {
		m.upload.err = msg.err
		return m, nil
	}
	sheet := msg.sheet
	m.upload.sheet = &sheet
	m.upload.rowErrs = sheet.Validate()
	if len(m.upload.rowErrs) > 0 {
		m.statusMsg = fmt.Sprintf("%d row(s) need fixing before upload.", len(m.upload.rowErrs))
		return m, nil
	}
	m.statusMsg = fmt.Sprintf("%d row(s) ready. Enter to upload.", len(sheet.Rows))
	return m, nil
}

func (m Model) handleUploadMsg(msg uploadMsg) (Model, tea.Cmd) {
	m.upload.uploading = false
	if msg.err != nil {
		m.upload.err = msg.err
		var apiErr *api.APIError
		if errors.As(msg.err, &apiErr) && len(apiErr.Rows) > 0 {
			m.upload.rowErrs = make([]ingest.RowError, len(apiErr.Rows))
			for i, r := range apiErr.Rows {
				m.upload.rowErrs[i] = ingest.RowError{Row: r.Row, Errors: ingest.FieldErrors(r.Errors)}
			}
		}
		m.statusMsg = "Upload failed: " + describeError(msg.err)
		logx.Warnf("spreadsheet upload failed: %v", msg.err)
		return m, nil
	}
	m.upload.message = msg.message
	m.upload.sheet = nil
	m.statusMsg = "Upload complete: " + msg.message
	logx.Infof("spreadsheet %s uploaded: %s", m.upload.path, msg.message)
	fetch := m.startFetch()
	return m, tea.Batch(m.spinner.Tick, fetch, m.optionsCmd())
}
