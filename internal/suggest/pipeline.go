// Package suggest implements the suggestion pipeline: it debounces edits,
// fetches autocomplete suggestions and falls back to spelling corrections when
// autocomplete comes back empty.
//
// The pipeline is a Bubble Tea state machine. Edit and Update return the next
// state plus the command to run; responses come back as messages and are
// applied only if they belong to the pipeline's current epoch.
package suggest

import (
	"context"
	"strings"
	"time"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/sequence"
	tea "github.com/charmbracelet/bubbletea"
)

// Defaults for Config.
const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultMinLength = 2
	DefaultTimeout   = 10 * time.Second
)

// TickFunc schedules fn after d. It matches tea.Tick.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Config holds pipeline settings.
type Config struct {
	Tick              TickFunc
	Debounce          time.Duration
	Timeout           time.Duration
	MinLength         int
	AutocompleteLimit int
	SpellingLimit     int
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		Tick:              tea.Tick,
		Debounce:          DefaultDebounce,
		Timeout:           DefaultTimeout,
		MinLength:         DefaultMinLength,
		AutocompleteLimit: model.DefaultAutocompleteLimit,
		SpellingLimit:     model.DefaultSpellingLimit,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Tick == nil {
		c.Tick = d.Tick
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.AutocompleteLimit <= 0 {
		c.AutocompleteLimit = d.AutocompleteLimit
	}
	if c.SpellingLimit <= 0 {
		c.SpellingLimit = d.SpellingLimit
	}
	return c
}

// Status summarizes what the pipeline is showing.
type Status int

// Pipeline statuses.
const (
	StatusIdle Status = iota
	StatusWaiting
	StatusLoading
	StatusSuggestions
	StatusSpelling
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusWaiting:
		return "waiting"
	case StatusLoading:
		return "loading"
	case StatusSuggestions:
		return "suggestions"
	case StatusSpelling:
		return "spelling"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Pipeline is the suggestion state machine. The zero value is not usable; use New.
type Pipeline struct {
	client      backend.Suggester
	input       string
	suggestions []model.AutocompleteSuggestion
	spelling    []model.SpellingSuggestion
	config      Config
	epoch       sequence.Epoch
	// timer identifies the latest debounce tick; earlier ticks are ignored.
	timer    uint64
	pending  bool
	loading  bool
	resolved bool
	closed   bool
}

// New creates a pipeline backed by client.
func New(client backend.Suggester, cfg Config) Pipeline {
	return Pipeline{
		client: client,
		config: cfg.withDefaults(),
	}
}

// Edit feeds the latest raw input into the pipeline.
func (p Pipeline) Edit(text string) (Pipeline, tea.Cmd) {
	if p.closed {
		return p, nil
	}

	p.input = text

	if len([]rune(strings.TrimSpace(text))) < p.config.MinLength {
		// Too short: drop everything, including any pending window and in-flight call.
		p.epoch.Next()
		p.timer++
		p.pending = false
		p.loading = false
		p.resolved = false
		p.suggestions = nil
		p.spelling = nil
		return p, nil
	}

	if !p.pending {
		p.epoch.Next()
		p.pending = true
		p.loading = false
	}
	p.timer++

	msg := debounceMsg{timer: p.timer, epoch: p.epoch.Current()}
	return p, p.config.Tick(p.config.Debounce, func(time.Time) tea.Msg {
		return msg
	})
}

// Update applies debounce ticks and backend responses.
func (p Pipeline) Update(msg tea.Msg) (Pipeline, tea.Cmd) {
	if p.closed {
		return p, nil
	}

	switch msg := msg.(type) {
	case debounceMsg:
		return p.handleDebounce(msg)
	case autocompleteMsg:
		return p.handleAutocomplete(msg)
	case spellingMsg:
		return p.handleSpelling(msg)
	}
	return p, nil
}

// Close tears the pipeline down. Pending ticks and in-flight responses are
// ignored from now on.
func (p Pipeline) Close() Pipeline {
	p.closed = true
	p.pending = false
	p.loading = false
	p.timer++
	p.epoch.Next()
	return p
}

func (p Pipeline) handleDebounce(msg debounceMsg) (Pipeline, tea.Cmd) {
	if !p.pending || msg.timer != p.timer || p.epoch.Stale(msg.epoch) {
		return p, nil
	}

	p.pending = false
	p.loading = true
	return p, p.fetchAutocomplete(p.input, msg.epoch)
}

func (p Pipeline) handleAutocomplete(msg autocompleteMsg) (Pipeline, tea.Cmd) {
	if p.epoch.Stale(msg.epoch) {
		common.LogDebug("Discarding stale autocomplete response", common.Fields{
			"query": msg.query,
			"epoch": msg.epoch,
		})
		return p, nil
	}

	if msg.err != nil {
		return p.fail(msg.err, "autocomplete", msg.query), nil
	}

	if len(msg.suggestions) > 0 {
		p.suggestions = msg.suggestions
		p.spelling = nil
		p.loading = false
		p.resolved = true
		return p, nil
	}

	p.suggestions = nil
	return p, p.fetchSpelling(msg.query, msg.epoch)
}

func (p Pipeline) handleSpelling(msg spellingMsg) (Pipeline, tea.Cmd) {
	if p.epoch.Stale(msg.epoch) {
		common.LogDebug("Discarding stale spelling response", common.Fields{
			"query": msg.query,
			"epoch": msg.epoch,
		})
		return p, nil
	}

	if msg.err != nil {
		return p.fail(msg.err, "spelling", msg.query), nil
	}

	p.suggestions = nil
	p.spelling = msg.suggestions
	p.loading = false
	p.resolved = true
	return p, nil
}

// fail falls back to an empty suggestion state. Suggestion failures are never
// surfaced to the user.
func (p Pipeline) fail(err error, call, query string) Pipeline {
	common.LogError(err, "Suggestion request failed", common.Fields{
		"call":  call,
		"query": query,
	})
	p.suggestions = nil
	p.spelling = nil
	p.loading = false
	p.resolved = true
	return p
}

func (p Pipeline) fetchAutocomplete(query string, epoch sequence.Tag) tea.Cmd {
	client, limit, timeout := p.client, p.config.AutocompleteLimit, p.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.Autocomplete(ctx, query, limit)
		return autocompleteMsg{
			epoch:       epoch,
			query:       query,
			suggestions: resp.Suggestions,
			err:         err,
		}
	}
}

func (p Pipeline) fetchSpelling(query string, epoch sequence.Tag) tea.Cmd {
	client, limit, timeout := p.client, p.config.SpellingLimit, p.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.SpellingSuggestions(ctx, query, limit)
		return spellingMsg{
			epoch:       epoch,
			query:       query,
			suggestions: resp.Suggestions,
			err:         err,
		}
	}
}

// Input returns the latest raw input.
func (p Pipeline) Input() string {
	return p.input
}

// Suggestions returns the current autocomplete suggestions.
func (p Pipeline) Suggestions() []model.AutocompleteSuggestion {
	return p.suggestions
}

// Spelling returns the current spelling corrections. It is only populated
// when autocomplete returned nothing for the same input.
func (p Pipeline) Spelling() []model.SpellingSuggestion {
	return p.spelling
}

// Loading reports whether a suggestion request is outstanding.
func (p Pipeline) Loading() bool {
	return p.loading
}

// Epoch returns the pipeline's current request epoch.
func (p Pipeline) Epoch() sequence.Tag {
	return p.epoch.Current()
}

// Closed reports whether the pipeline has been torn down.
func (p Pipeline) Closed() bool {
	return p.closed
}

// Status summarizes the pipeline state for rendering.
func (p Pipeline) Status() Status {
	switch {
	case p.loading:
		return StatusLoading
	case p.pending:
		return StatusWaiting
	case len(p.suggestions) > 0:
		return StatusSuggestions
	case len(p.spelling) > 0:
		return StatusSpelling
	case p.resolved:
		return StatusEmpty
	default:
		return StatusIdle
	}
}
