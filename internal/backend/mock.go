package backend

import (
	"context"
	"sync"

	"github.com/Veraticus/cashsearch/internal/model"
)

// MockClient is a mock implementation of Client for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	SearchFn       func(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
	AutocompleteFn func(ctx context.Context, prefix string, limit int) (model.AutocompleteResponse, error)
	SpellingFn     func(ctx context.Context, term string, limit int) (model.SpellingResponse, error)
	FuzzyFn        func(ctx context.Context, query string, threshold float64) ([]model.SearchResult, error)

	// Call tracking
	SearchCalls       []model.SearchRequest
	AutocompleteCalls []SuggestCall
	SpellingCalls     []SuggestCall
	FuzzyCalls        []FuzzyCall

	mu sync.Mutex
}

// SuggestCall records the parameters of an autocomplete or spelling call.
type SuggestCall struct {
	Text  string
	Limit int
}

// FuzzyCall records the parameters of a FuzzySearch call.
type FuzzyCall struct {
	Query     string
	Threshold float64
}

// NewMockClient creates a new mock backend client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Search implements Searcher.
func (m *MockClient) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, req)
	fn := m.SearchFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	// Default behavior: no results
	return model.SearchResponse{Content: []model.SearchResult{}, Size: req.Size, Number: req.Page}, nil
}

// Autocomplete implements Suggester.
func (m *MockClient) Autocomplete(ctx context.Context, prefix string, limit int) (model.AutocompleteResponse, error) {
	m.mu.Lock()
	m.AutocompleteCalls = append(m.AutocompleteCalls, SuggestCall{Text: prefix, Limit: limit})
	fn := m.AutocompleteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prefix, limit)
	}

	return model.AutocompleteResponse{OriginalQuery: prefix, Suggestions: []model.AutocompleteSuggestion{}}, nil
}

// SpellingSuggestions implements Suggester.
func (m *MockClient) SpellingSuggestions(ctx context.Context, term string, limit int) (model.SpellingResponse, error) {
	m.mu.Lock()
	m.SpellingCalls = append(m.SpellingCalls, SuggestCall{Text: term, Limit: limit})
	fn := m.SpellingFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, term, limit)
	}

	return model.SpellingResponse{OriginalQuery: term, Suggestions: []model.SpellingSuggestion{}}, nil
}

// FuzzySearch implements FuzzySearcher.
func (m *MockClient) FuzzySearch(ctx context.Context, query string, threshold float64) ([]model.SearchResult, error) {
	m.mu.Lock()
	m.FuzzyCalls = append(m.FuzzyCalls, FuzzyCall{Query: query, Threshold: threshold})
	fn := m.FuzzyFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, threshold)
	}

	return []model.SearchResult{}, nil
}

// CallCount returns the total number of backend calls made so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SearchCalls) + len(m.AutocompleteCalls) + len(m.SpellingCalls) + len(m.FuzzyCalls)
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = nil
	m.AutocompleteCalls = nil
	m.SpellingCalls = nil
	m.FuzzyCalls = nil
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)
