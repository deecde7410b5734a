package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/api"
	"molecule-browser/internal/catalog"
	"molecule-browser/internal/infra/logx"
	"molecule-browser/internal/ingest"
	"molecule-browser/internal/store"
	"molecule-browser/internal/viewstate"
)

// ---------- Messages / Cmds ----------
type fetchMsg struct {
	ticket  viewstate.Ticket
	records []catalog.Record
	err     error
}

type optionsMsg struct {
	options catalog.Options
	err     error
}

type snapshotMsg struct {
	snap store.Snapshot
	err  error
}

type snapshotSavedMsg struct{ err error }

type detailMsg struct {
	record catalog.Record
	err    error
}

type createMsg struct {
	record catalog.Record
	err    error
}

type sheetMsg struct {
	path  string
	sheet ingest.Sheet
	err   error
}

type uploadMsg struct {
	message string
	err     error
}

func (m Model) timeout() time.Duration {
	if m.cfg.API.Timeout > 0 {
		return m.cfg.API.Timeout
	}
	return 10 * time.Second
}

// startFetch issues a new ticket and returns the listing command for it.
// Earlier outstanding fetches are superseded.
func (m *Model) startFetch() tea.Cmd {
	t := m.ctrl.BeginFetch()
	search := ""
	if m.cfg.ServerSearch {
		search = m.ctrl.SearchTerm()
	}
	return m.fetchCmd(t, search)
}

func (m Model) fetchCmd(t viewstate.Ticket, search string) tea.Cmd {
	c, timeout := m.client, m.timeout()
	return func() tea.Msg {
		if c == nil {
			return fetchMsg{ticket: t, err: api.ErrNoToken}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rc := &api.RetryCounters{}
		recs, err := c.ListMolecules(api.WithRetryCounters(ctx, rc), api.ListOpts{Search: search})
		if rc.Total > 0 {
			logx.Infof("molecule listing needed %s", rc)
		}
		return fetchMsg{ticket: t, records: recs, err: err}
	}
}

func (m Model) optionsCmd() tea.Cmd {
	c, timeout := m.client, m.timeout()
	return func() tea.Msg {
		if c == nil {
			return optionsMsg{err: api.ErrNoToken}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		recs, err := c.ListMolecules(ctx, api.ListOpts{})
		if err != nil {
			return optionsMsg{err: err}
		}
		return optionsMsg{options: catalog.CollectOptions(recs)}
	}
}

func (m Model) loadSnapshotCmd() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache := m.cache
	return func() tea.Msg {
		snap, err := cache.LoadSnapshot(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) saveSnapshotCmd(records []catalog.Record) tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache, at := m.cache, m.now()
	recs := append([]catalog.Record(nil), records...)
	return func() tea.Msg {
		return snapshotSavedMsg{err: cache.ReplaceSnapshot(context.Background(), recs, at)}
	}
}

func (m Model) detailCmd(id int) tea.Cmd {
	c, timeout := m.client, m.timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := c.GetMolecule(ctx, id)
		return detailMsg{record: rec, err: err}
	}
}

func (m Model) createCmd(in catalog.NewRecord) tea.Cmd {
	c, timeout := m.client, m.timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := c.CreateMolecule(ctx, in)
		return createMsg{record: rec, err: err}
	}
}

func parseSheetCmd(path string) tea.Cmd {
	return func() tea.Msg {
		sheet, err := ingest.ParseFile(path)
		return sheetMsg{path: path, sheet: sheet, err: err}
	}
}

func (m Model) uploadCmd(path string) tea.Cmd {
	c := m.client
	// uploads are processed row by row on the server
	timeout := 4 * m.timeout()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadMsg{err: err}
		}
		defer f.Close()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg, err := c.UploadSpreadsheet(ctx, filepath.Base(path), f)
		return uploadMsg{message: msg, err: err}
	}
}

// isAuthError reports failures that a different token could fix.
func isAuthError(err error) bool {
	if errors.Is(err, api.ErrNoToken) {
		return true
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

func describeError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", apiErr.Message, apiErr.Status)
	}
	return err.Error()
}
