package ui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"molecule-browser/internal/api"
	"molecule-browser/internal/catalog"
	"molecule-browser/internal/config"
	"molecule-browser/internal/ingest"
	"molecule-browser/internal/store"
	"molecule-browser/internal/viewstate"
)

// --- Model / State ---
type state int

const (
	stateWelcome state = iota
	stateTokenPrompt
	stateValidating
	stateBrowse
	stateFilters
	stateDetail
	stateAdd
	stateUpload
	stateQuit
)

// Source is the molecule API used by the browser.
type Source interface {
	ListMolecules(ctx context.Context, opt api.ListOpts) ([]catalog.Record, error)
	GetMolecule(ctx context.Context, id int) (catalog.Record, error)
	CreateMolecule(ctx context.Context, in catalog.NewRecord) (catalog.Record, error)
	UploadSpreadsheet(ctx context.Context, filename string, r io.Reader) (string, error)
	MetricsSnapshot() api.MetricsSnapshot
}

// Cache persists the last fetched collection between runs.
type Cache interface {
	LoadSnapshot(ctx context.Context) (store.Snapshot, error)
	ReplaceSnapshot(ctx context.Context, records []catalog.Record, fetchedAt time.Time) error
}

type BrowseState struct {
	cursor      int // index within the current page
	searching   bool
	searchInput textinput.Model
}

// FilterEditor edits a draft copy of the applied filters.
type FilterEditor struct {
	draft  catalog.FilterState
	field  int // index into catalog.Fields
	cursor int
	typing bool
	input  textinput.Model
	query  map[catalog.Field]string
}

type DetailState struct {
	record  catalog.Record
	loading bool
	err     error
}

type AddForm struct {
	inputs     []textinput.Model
	focus      int
	errs       ingest.FieldErrors
	serverErr  error
	submitting bool
}

type UploadState struct {
	input     textinput.Model
	path      string
	sheet     *ingest.Sheet
	rowErrs   []ingest.RowError
	err       error
	uploading bool
	message   string
}

type Model struct {
	state         state
	cfg           config.Config
	cfgPath       string
	hasConfig     bool
	tokenEntered  bool
	statusMsg     string
	validateErr   error
	width, height int

	spinner  spinner.Model
	ti       textinput.Model
	viewport viewport.Model

	newClient func(token string) Source
	client    Source
	cache     Cache
	now       func() time.Time

	ctrl       *viewstate.Controller
	options    catalog.Options
	optionsErr error
	fromCache  bool
	snapshotAt time.Time

	browse    BrowseState
	filters   FilterEditor
	detail    DetailState
	add       AddForm
	upload    UploadState
	filterCfg FilterConfig
}
