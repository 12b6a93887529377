package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/search"
	"github.com/Veraticus/cashsearch/internal/storage"
	"github.com/Veraticus/cashsearch/internal/suggest"
	"github.com/Veraticus/cashsearch/internal/tui/components"
	"github.com/Veraticus/cashsearch/internal/tui/themes"
)

// Model is the root TUI model. It owns one suggestion pipeline and one search
// controller and routes every message to both.
type Model struct {
	theme          themes.Theme
	recorder       *Recorder
	keymap         KeyMap
	config         Config
	help           help.Model
	input          textinput.Model
	suggestSpinner spinner.Model
	searchSpinner  spinner.Model
	pipeline       suggest.Pipeline
	search         search.Controller
	suggestions    components.SuggestionListModel
	results        components.ResultListModel
	history        []storage.HistoryEntry
	width          int
	height         int
	quitting       bool
}

// New creates the root model for client.
func New(client backend.Client, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(client, cfg)
}

// newModel creates a new model with the given configuration.
func newModel(client backend.Client, cfg Config) Model {
	if cfg.Suggest.MinLength <= 0 {
		cfg.Suggest.MinLength = suggest.DefaultMinLength
	}

	input := textinput.New()
	input.Placeholder = "Search payments, deposits and loans"
	input.Prompt = "› "
	input.CharLimit = 256
	if !cfg.EnableAnimations {
		input.Cursor.SetMode(cursor.CursorStatic)
	}
	input.Focus()

	m := Model{
		theme:          cfg.Theme,
		recorder:       cfg.Recorder,
		keymap:         DefaultKeyMap(),
		config:         cfg,
		help:           help.New(),
		input:          input,
		suggestSpinner: newSpinner(cfg.Theme),
		searchSpinner:  newSpinner(cfg.Theme),
		pipeline:       suggest.New(client, cfg.Suggest),
		search:         search.New(client, cfg.Search),
		suggestions:    components.NewSuggestionList(cfg.Theme),
		results:        components.NewResultList(cfg.Theme),
		width:          cfg.Width,
		height:         cfg.Height,
	}
	m.handleResize()
	m.syncViews()
	return m
}

func newSpinner(theme themes.Theme) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
	)
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadHistory()}
	if m.config.EnableAnimations {
		cmds = append(cmds, textinput.Blink, m.suggestSpinner.Tick, m.searchSpinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncViews()
	if next.recorder != nil {
		next.recorder.RecordState(next, msg)
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			common.LogError(msg.err, "Failed to load search history", nil)
			return m, nil
		}
		m.history = msg.entries
		return m, nil

	case historyRecordedMsg:
		if msg.err != nil {
			common.LogError(msg.err, "Failed to record search", common.Fields{"query": msg.query})
			return m, nil
		}
		return m, m.loadHistory()

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.suggestSpinner, cmd = m.suggestSpinner.Update(msg)
		cmds = append(cmds, cmd)
		m.searchSpinner, cmd = m.searchSpinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Everything else belongs to a sub-machine or the input cursor. Each one
	// ignores messages it does not own.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.pipeline, cmd = m.pipeline.Update(msg)
	cmds = append(cmds, cmd)
	m.search, cmd = m.search.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// handleKey dispatches key presses. Keys without a binding edit the input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.pipeline = m.pipeline.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen

	case key.Matches(msg, m.keymap.Submit):
		if m.suggestions.Selected() >= 0 {
			return m.accept()
		}
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keymap.Accept):
		return m.accept()

	case key.Matches(msg, m.keymap.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keymap.PrevPage):
		m.search, cmd = m.search.PrevPage()
		return m, cmd

	case key.Matches(msg, m.keymap.NextPage):
		m.search, cmd = m.search.NextPage()
		return m, cmd

	case key.Matches(msg, m.keymap.TogglePayments):
		return m.toggleScope(func(s *model.Scope) { s.Payments = !s.Payments })

	case key.Matches(msg, m.keymap.ToggleDeposits):
		return m.toggleScope(func(s *model.Scope) { s.Deposits = !s.Deposits })

	case key.Matches(msg, m.keymap.ToggleLoans):
		return m.toggleScope(func(s *model.Scope) { s.Loans = !s.Loans })
	}

	return m.edit(msg)
}

// edit forwards a key to the input and feeds any change to the pipeline.
func (m Model) edit(msg tea.KeyMsg) (Model, tea.Cmd) {
	before := m.input.Value()

	var inputCmd, editCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.suggestions.Select(-1)
		m.pipeline, editCmd = m.pipeline.Edit(value)
	}
	return m, tea.Batch(inputCmd, editCmd)
}

// submit commits text as a new search and records it in history.
func (m Model) submit(text string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.search, cmd = m.search.Submit(text)
	if cmd == nil {
		return m, nil
	}
	m.suggestions.Select(-1)
	return m, tea.Batch(cmd, m.recordQuery(strings.TrimSpace(text)))
}

// accept puts the highlighted candidate, or the first one, into the input and
// searches for it.
func (m Model) accept() (Model, tea.Cmd) {
	candidates := m.candidates()
	if len(candidates) == 0 {
		return m, nil
	}
	text := candidates[max(m.suggestions.Selected(), 0)]

	m.input.SetValue(text)
	m.input.CursorEnd()

	var editCmd tea.Cmd
	m.pipeline, editCmd = m.pipeline.Edit(text)

	next, submitCmd := m.submit(text)
	return next, tea.Batch(editCmd, submitCmd)
}

// toggleScope flips one entity family and re-runs the committed query. A scope
// that would exclude everything is refused.
func (m Model) toggleScope(flip func(*model.Scope)) (Model, tea.Cmd) {
	scope := m.search.Scope()
	flip(&scope)
	if scope.None() {
		return m, nil
	}

	m.search = m.search.SetScope(scope)
	if !m.search.Searched() {
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Submit(m.search.Query().Text)
	return m, cmd
}

// moveSelection moves the highlighted candidate by delta, wrapping to "none"
// past either end.
func (m *Model) moveSelection(delta int) {
	n := len(m.candidates())
	if n == 0 {
		m.suggestions.Select(-1)
		return
	}

	next := m.suggestions.Selected() + delta
	switch {
	case next >= n:
		next = -1
	case next < -1:
		next = n - 1
	}
	m.suggestions.Select(next)
}

// candidates returns the texts the user can currently pick from.
func (m Model) candidates() []string {
	if m.showingHistory() {
		out := make([]string, 0, len(m.history))
		for _, h := range m.history {
			out = append(out, h.Query)
		}
		return out
	}

	if s := m.pipeline.Suggestions(); len(s) > 0 {
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, item.Text)
		}
		return out
	}

	out := make([]string, 0, len(m.pipeline.Spelling()))
	for _, item := range m.pipeline.Spelling() {
		out = append(out, item.Text)
	}
	return out
}

// showingHistory reports whether recent searches replace suggestions.
func (m Model) showingHistory() bool {
	return m.inputTooShort() && len(m.history) > 0
}

func (m Model) inputTooShort() bool {
	return len([]rune(strings.TrimSpace(m.input.Value()))) < m.config.Suggest.MinLength
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	width := min(m.width, m.config.MaxResultWidth)
	m.input.Width = max(width-10, 20)
	m.help.Width = width
	m.results.Resize(width)
}
