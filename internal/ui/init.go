package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"molecule-browser/internal/catalog"
	"molecule-browser/internal/config"
	"molecule-browser/internal/paging"
	"molecule-browser/internal/viewstate"
)

// Options wires the model to its collaborators.
type Options struct {
	Config     config.Config
	ConfigPath string
	// HasConfigFile reports whether ConfigPath existed at start.
	HasConfigFile bool
	// NewClient builds the API client once a token is known.
	NewClient func(token string) Source
	// Cache is optional.
	Cache Cache
}

var addFields = []struct {
	key, label, placeholder string
}{
	{"nome_molecula", "Name", "Quercetin"},
	{"smiles", "SMILES", "O=C1C(O)=C(Oc2cc(O)cc(O)c12)c1ccc(O)c(O)c1"},
	{"referencia", "Reference", "doi:10.1000/xyz"},
	{"nome_planta", "Plant", "Allium cepa"},
	{"database", "Database", "PubChem"},
	{"origem", "Origin", "Bulb"},
	{"activity", "Activity", "antioxidant"},
}

func NewModel(opts Options) Model {
	m := Model{
		state:     stateWelcome,
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		hasConfig: opts.HasConfigFile,
		newClient: opts.NewClient,
		cache:     opts.Cache,
		now:       time.Now,
		ctrl:      viewstate.New(paging.DefaultPageSize),
	}

	if m.cfg.Token == "" {
		m.statusMsg = "No token configured. Press Enter to enter one."
	} else {
		m.statusMsg = "Token found. Enter to connect, q to quit."
	}

	ti := textinput.New()
	ti.Placeholder = "API token"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 200
	m.ti = ti

	si := textinput.New()
	si.Placeholder = "Search name, plant or database…"
	si.CharLimit = 200
	si.Width = 40
	m.browse.searchInput = si

	fi := textinput.New()
	fi.CharLimit = 200
	fi.Width = 40
	m.filters.input = fi
	m.filters.query = make(map[catalog.Field]string)
	m.filterCfg = FilterConfig{
		MinCoverage: 0.6,
		MaxSpread:   40,
		MaxResults:  200,
	}

	m.add.inputs = make([]textinput.Model, len(addFields))
	for i, f := range addFields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = 500
		in.Width = 50
		m.add.inputs[i] = in
	}

	ui := textinput.New()
	ui.Placeholder = "/path/to/molecules.xlsx"
	ui.CharLimit = 1024
	ui.Width = 60
	m.upload.input = ui

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = subtleStyle
	m.spinner = sp

	m.viewport = viewport.New(80, 20) // resized on WindowSizeMsg

	return m
}

func (m Model) Init() tea.Cmd { return nil }
