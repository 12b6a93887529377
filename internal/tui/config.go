package tui

import (
	"context"

	"github.com/Veraticus/cashsearch/internal/search"
	"github.com/Veraticus/cashsearch/internal/storage"
	"github.com/Veraticus/cashsearch/internal/suggest"
	"github.com/Veraticus/cashsearch/internal/tui/themes"
)

// HistoryStore persists committed queries. *storage.SQLiteStorage satisfies it.
type HistoryStore interface {
	RecordQuery(ctx context.Context, query string) error
	RecentQueries(ctx context.Context, limit int) ([]storage.HistoryEntry, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme            themes.Theme
	History          HistoryStore
	Recorder         *Recorder
	Suggest          suggest.Config
	Search           search.Config
	HistoryLimit     int
	Width            int
	Height           int
	MaxResultWidth   int
	EnableAnimations bool
	ShowHelp         bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:            themes.Default,
		Suggest:          suggest.DefaultConfig(),
		Search:           search.DefaultConfig(),
		HistoryLimit:     8,
		Width:            100,
		Height:           30,
		MaxResultWidth:   120,
		EnableAnimations: true,
		ShowHelp:         true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHistory enables recent searches backed by store.
func WithHistory(store HistoryStore, limit int) Option {
	return func(c *Config) {
		c.History = store
		if limit > 0 {
			c.HistoryLimit = limit
		}
	}
}

// WithSuggest configures the suggestion pipeline.
func WithSuggest(cfg suggest.Config) Option {
	return func(c *Config) {
		c.Suggest = cfg
	}
}

// WithSearch configures the search controller.
func WithSearch(cfg search.Config) Option {
	return func(c *Config) {
		c.Search = cfg
	}
}

// WithAnimations toggles the spinners and the blinking cursor.
func WithAnimations(enabled bool) Option {
	return func(c *Config) {
		c.EnableAnimations = enabled
	}
}

// WithHelp toggles the key help footer.
func WithHelp(enabled bool) Option {
	return func(c *Config) {
		c.ShowHelp = enabled
	}
}

// WithRecorder captures every frame for debugging.
func WithRecorder(r *Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}
