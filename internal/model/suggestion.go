package model

// Default suggestion limits.
const (
	DefaultAutocompleteLimit = 10
	DefaultSpellingLimit     = 5
	DefaultFuzzyThreshold    = 0.3
)

// AutocompleteSuggestion is a completion for the typed prefix.
type AutocompleteSuggestion struct {
	Text   string `json:"suggestion"`
	Source string `json:"source"`
}

// AutocompleteResponse is the result of an autocomplete call.
type AutocompleteResponse struct {
	OriginalQuery string                   `json:"originalQuery"`
	Suggestions   []AutocompleteSuggestion `json:"suggestions"`
}

// SpellingSuggestion is a "did you mean" correction with a similarity in [0,1].
type SpellingSuggestion struct {
	Text       string  `json:"suggestion"`
	Similarity float64 `json:"similarity"`
}

// SpellingResponse is the result of a spelling-suggestion call.
type SpellingResponse struct {
	OriginalQuery string               `json:"originalQuery"`
	Suggestions   []SpellingSuggestion `json:"suggestions"`
}
