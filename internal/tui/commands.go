package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// historyTimeout bounds a single history read or write.
const historyTimeout = 2 * time.Second

// loadHistory reads the most recent searches.
func (m Model) loadHistory() tea.Cmd {
	store, limit := m.config.History, m.config.HistoryLimit
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()

		entries, err := store.RecentQueries(ctx, limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// recordQuery stores a committed query.
func (m Model) recordQuery(query string) tea.Cmd {
	store := m.config.History
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()

		return historyRecordedMsg{query: query, err: store.RecordQuery(ctx, query)}
	}
}
