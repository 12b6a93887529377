// Package backend talks to the remote cash-management search index.
//
// The index owns ranking, fuzzy matching and storage; this package only moves
// requests and responses across the wire. Every failure, whatever its cause or
// status code, is reported as common.ErrBackend.
package backend

import (
	"context"

	"github.com/Veraticus/cashsearch/internal/model"
)

// Searcher fetches one page of ranked results.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
}

// Suggester produces autocomplete and spelling suggestions.
type Suggester interface {
	Autocomplete(ctx context.Context, prefix string, limit int) (model.AutocompleteResponse, error)
	SpellingSuggestions(ctx context.Context, term string, limit int) (model.SpellingResponse, error)
}

// FuzzySearcher runs similarity searches. The query orchestration never calls
// it; it is exposed for tooling.
type FuzzySearcher interface {
	FuzzySearch(ctx context.Context, query string, threshold float64) ([]model.SearchResult, error)
}

// Client is the full backend contract.
type Client interface {
	Searcher
	Suggester
	FuzzySearcher
}
