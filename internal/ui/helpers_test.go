package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/api"
	"molecule-browser/internal/catalog"
	"molecule-browser/internal/config"
	"molecule-browser/internal/store"
)

type fakeSource struct {
	records  []catalog.Record
	listErr  error
	searches []string

	detail    catalog.Record
	detailErr error

	created   []catalog.NewRecord
	createErr error

	uploaded  []string
	uploadMsg string
	uploadErr error
}

func (f *fakeSource) ListMolecules(_ context.Context, opt api.ListOpts) ([]catalog.Record, error) {
	f.searches = append(f.searches, opt.Search)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]catalog.Record(nil), f.records...), nil
}

func (f *fakeSource) GetMolecule(_ context.Context, id int) (catalog.Record, error) {
	if f.detailErr != nil {
		return catalog.Record{}, f.detailErr
	}
	r := f.detail
	r.ID = id
	return r, nil
}

func (f *fakeSource) CreateMolecule(_ context.Context, in catalog.NewRecord) (catalog.Record, error) {
	if f.createErr != nil {
		return catalog.Record{}, f.createErr
	}
	f.created = append(f.created, in)
	return catalog.Record{ID: 1000 + len(f.created), Name: in.Name}, nil
}

func (f *fakeSource) UploadSpreadsheet(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	return f.uploadMsg, nil
}

func (f *fakeSource) MetricsSnapshot() api.MetricsSnapshot {
	return api.MetricsSnapshot{HostCounts: map[string]int64{}}
}

type fakeCache struct {
	snap    store.Snapshot
	loadErr error
	saved   []catalog.Record
	savedAt time.Time
	saves   int
}

func (c *fakeCache) LoadSnapshot(context.Context) (store.Snapshot, error) {
	if c.loadErr != nil {
		return store.Snapshot{}, c.loadErr
	}
	return c.snap, nil
}

func (c *fakeCache) ReplaceSnapshot(_ context.Context, records []catalog.Record, at time.Time) error {
	c.saves++
	c.saved = records
	c.savedAt = at
	return nil
}

func createKeyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func molecules(n int) []catalog.Record {
	out := make([]catalog.Record, n)
	for i := range out {
		db := "PubChem"
		if i%2 == 1 {
			db = "ChEMBL"
		}
		out[i] = catalog.Record{ID: i + 1, Name: fmt.Sprintf("M%d", i+1), Database: db, PlantName: "Allium cepa"}
	}
	return out
}

func newTestModel(t *testing.T, src *fakeSource, cache Cache) Model {
	t.Helper()
	cfg := config.Config{
		Token: "tok",
		API: config.API{
			BaseURL:  "http://api.test",
			Timeout:  time.Second,
			RPS:      config.DefaultRPS,
			Burst:    config.DefaultBurst,
			RetryMax: config.DefaultRetryMax,
		},
	}
	return NewModel(Options{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), config.FileName),
		NewClient:  func(string) Source { return src },
		Cache:      cache,
	})
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// feed delivers msgs in order, ignoring spinner ticks and follow-up commands.
func feed(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		m, _ = step(m, msg)
	}
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = step(m, createKeyMsg(k))
	}
	return m
}

// browsing connects with the stored token and delivers the initial listing.
func browsing(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := newTestModel(t, src, nil)
	m, cmd := step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)
	if m.state != stateBrowse {
		t.Fatalf("expected stateBrowse, got %v", m.state)
	}
	return m
}
