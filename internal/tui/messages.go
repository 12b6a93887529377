package tui

import "github.com/Veraticus/cashsearch/internal/storage"

// History messages.
type historyLoadedMsg struct {
	err     error
	entries []storage.HistoryEntry
}

type historyRecordedMsg struct {
	err   error
	query string
}
