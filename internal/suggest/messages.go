package suggest

import (
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/sequence"
)

// debounceMsg fires when a debounce window elapses.
type debounceMsg struct {
	timer uint64
	epoch sequence.Tag
}

type autocompleteMsg struct {
	err         error
	query       string
	suggestions []model.AutocompleteSuggestion
	epoch       sequence.Tag
}

type spellingMsg struct {
	err         error
	query       string
	suggestions []model.SpellingSuggestion
	epoch       sequence.Tag
}
