package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/cyclerider/internal/core/config"
	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/internal/core/session"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	inputView
	helpView
)

type inputField int

const (
	inputNone inputField = iota
	inputCurrent
	inputVolume
	inputImport
)

// Model is the interactive cycling analyzer. Every event that can change the
// outcome re-runs the derivation over the current selection.
type Model struct {
	sess *session.Session
	imp  *importer.Importer
	cfg  *config.Config
	args []string

	params  models.Params
	display models.DisplayOptions
	pairing models.Pairing
	result  cycles.Result

	mode     viewMode
	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	editing  inputField

	width   int
	height  int
	loading bool
	status  string
	err     error
}

// New creates the model. args are imported on start.
func New(imp *importer.Importer, cfg *config.Config, args []string) Model {
	m := Model{
		sess:     session.New(cfg.ChargeFirst),
		imp:      imp,
		cfg:      cfg,
		args:     args,
		params:   cfg.Params(),
		display:  cfg.Display(),
		pairing:  cfg.Pairing,
		mode:     listView,
		list:     createRecordingList(nil, 80, 20),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.recompute()
	return m
}

func (m Model) Init() tea.Cmd {
	if len(m.args) == 0 {
		return nil
	}
	return importFiles(m.imp, m.args)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			return m, tea.Quit
		}

		// Mode-specific key handling
		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case inputView:
			return m.updateInput(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case recordingsLoadedMsg:
		m.loading = false
		m.sess.Replace(msg.batch)
		m.recompute()
		m.list.Select(0)
		m.err = nil
		m.status = importStatus(msg.batch)
		return m, nil

	case exportWrittenMsg:
		m.err = nil
		m.status = pluralize(msg.cycles, "cycle") + " exported to " + msg.path
		return m, nil

	case exportCopiedMsg:
		m.err = nil
		m.status = pluralize(msg.cycles, "cycle") + " copied to clipboard"
		return m, nil

	case plotsWrittenMsg:
		m.err = nil
		m.status = pluralize(len(msg.paths), "chart") + " written"
		if len(msg.paths) > 0 {
			m.status += " to " + dirOf(msg.paths[0])
		}
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// recompute derives the result for the current selection and parameters and
// refreshes the list labels that depend on it.
func (m *Model) recompute() {
	m.result = m.sess.Analyze(m.params)

	bySegment := make(map[string]cycles.Segment, len(m.result.Segments))
	for _, s := range m.result.Segments {
		bySegment[s.Path] = s
	}

	recs := m.sess.Ordered()
	items := make([]recordingItem, len(recs))
	for i, rec := range recs {
		key := session.Key(rec)
		item := recordingItem{rec: rec, selected: m.sess.IsSelected(key)}
		if seg, ok := bySegment[key]; ok {
			item.segment = &seg
		}
		items[i] = item
	}

	index := m.list.Index()
	m.list.SetItems(toListItems(items))
	if index < len(items) {
		m.list.Select(index)
	}
	m.layout()
}

func (m *Model) layout() {
	listHeight := m.height - m.panelHeight() - 4
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width, listHeight)
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-4)
}

func (m Model) View() string {
	switch m.mode {
	case detailView:
		return m.viewDetail()
	case helpView:
		return m.viewHelp()
	}
	return m.viewList()
}
