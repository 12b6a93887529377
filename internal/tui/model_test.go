package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/storage"
	"github.com/Veraticus/cashsearch/internal/suggest"
	tuitest "github.com/Veraticus/cashsearch/internal/tui/testing"
)

// fakeHistory is an in-memory HistoryStore.
type fakeHistory struct {
	err     error
	entries []storage.HistoryEntry
	mu      sync.Mutex
}

func (f *fakeHistory) RecordQuery(_ context.Context, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	now := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)
	f.entries = append([]storage.HistoryEntry{{Query: query, FirstUsed: now, LastUsed: now, UseCount: 1}}, f.entries...)
	return nil
}

func (f *fakeHistory) RecentQueries(_ context.Context, limit int) ([]storage.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]storage.HistoryEntry(nil), f.entries[:min(limit, len(f.entries))]...), nil
}

func instantTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestModel(client backend.Client, opts ...Option) (tea.Model, *tuitest.TestRenderer) {
	cfg := suggest.DefaultConfig()
	cfg.Tick = instantTick

	opts = append([]Option{
		WithAnimations(false),
		WithSuggest(cfg),
		WithSize(120, 40),
	}, opts...)

	m := New(client, opts...)
	r := tuitest.NewTestRenderer()
	return r.Drain(m, m.Init()), r
}

func typeText(r *tuitest.TestRenderer, m tea.Model, text string) tea.Model {
	for _, msg := range tuitest.Type(text) {
		m = r.Send(m, msg)
	}
	return m
}

func acmeResults(req model.SearchRequest) model.SearchResponse {
	const total = 25
	start := req.Page * req.Size
	count := min(req.Size, total-start)

	content := make([]model.SearchResult, 0, count)
	for i := range count {
		content = append(content, model.SearchResult{
			EntityType:        model.EntityPayment,
			EntityID:          int64(start + i + 1),
			PrimaryIdentifier: fmt.Sprintf("PAY-%06d", start+i+1),
			PartyInfo:         "Acme Supplies Ltd",
			Amount:            100,
			Currency:          "USD",
			Status:            "COMPLETED",
			Rank:              0.8,
		})
	}
	return model.SearchResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    3,
		Size:          req.Size,
		Number:        req.Page,
	}
}

func newAcmeClient() *backend.MockClient {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(_ context.Context, prefix string, _ int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{
			OriginalQuery: prefix,
			Suggestions: []model.AutocompleteSuggestion{
				{Text: "Acme Supplies Ltd", Source: "party"},
				{Text: "Acme Holdings", Source: "party"},
			},
		}, nil
	}
	client.SearchFn = func(_ context.Context, req model.SearchRequest) (model.SearchResponse, error) {
		return acmeResults(req), nil
	}
	return client
}

func TestModel_InitialView(t *testing.T) {
	m, r := newTestModel(backend.NewMockClient())

	view := tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, "Cash Management Search")
	assert.Contains(t, view, "[x] Payments")
	assert.Contains(t, view, "[x] Deposits")
	assert.Contains(t, view, "[x] Loans")
	assert.Contains(t, view, "Type a query and press Enter to search")
}

func TestModel_TypingShowsSuggestions(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "a")
	assert.Empty(t, client.AutocompleteCalls, "single character must not hit the backend")

	m = typeText(r, m, "cme")

	require.NotEmpty(t, client.AutocompleteCalls)
	last := client.AutocompleteCalls[len(client.AutocompleteCalls)-1]
	assert.Equal(t, "acme", last.Text)
	assert.Equal(t, model.DefaultAutocompleteLimit, last.Limit)
	assert.Empty(t, client.SpellingCalls)

	view := tuitest.StripANSI(r.Render(m))
	assert.True(t, tuitest.ContainsInOrder(view, "Suggestions", "Acme Supplies Ltd", "Acme Holdings"))
}

func TestModel_SpellingFallback(t *testing.T) {
	client := backend.NewMockClient()
	client.SpellingFn = func(_ context.Context, term string, _ int) (model.SpellingResponse, error) {
		return model.SpellingResponse{
			OriginalQuery: term,
			Suggestions:   []model.SpellingSuggestion{{Text: "deposit", Similarity: 0.86}},
		}, nil
	}
	m, r := newTestModel(client)

	m = typeText(r, m, "depost")

	require.NotEmpty(t, client.SpellingCalls)
	assert.Equal(t, model.DefaultSpellingLimit, client.SpellingCalls[len(client.SpellingCalls)-1].Limit)

	view := tuitest.StripANSI(r.Render(m))
	assert.True(t, tuitest.ContainsInOrder(view, "Did you mean:", "deposit", "86%"))
}

func TestModel_NoSuggestions(t *testing.T) {
	m, r := newTestModel(backend.NewMockClient())

	m = typeText(r, m, "zzzz")

	assert.Contains(t, tuitest.StripANSI(r.Render(m)), "No suggestions found")
}

func TestModel_SuggestionFailureIsSilent(t *testing.T) {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(context.Context, string, int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{}, errors.New("connection refused")
	}
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")

	view := tuitest.StripANSI(r.Render(m))
	assert.NotContains(t, view, "connection refused")
	assert.NotContains(t, view, "search failed")
	assert.Empty(t, client.SpellingCalls)
}

func TestModel_SubmitShowsResults(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())

	require.Len(t, client.SearchCalls, 1)
	req := client.SearchCalls[0]
	assert.Equal(t, "acme", req.Query)
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, 10, req.Size)

	view := tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, `25 results found for "acme"`)
	assert.Contains(t, view, "PAY-000001")
	assert.Contains(t, view, "Page 1 of 3")
	assert.Contains(t, view, "[PgDn] Next")
	assert.NotContains(t, view, "[PgUp] Previous")
}

func TestModel_ResultCountKeepsShownQueryWhileLoading(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())
	m = typeText(r, m, "x")

	m, cmd := r.Update(m, tuitest.KeyEnter())
	require.NotNil(t, cmd)

	view := tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, `25 results found for "acme"`)
	assert.NotContains(t, view, `found for "acmex"`)

	m = r.Drain(m, cmd)
	view = tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, `25 results found for "acmex"`)
}

func TestModel_SubmitBlankIsIgnored(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "   ")
	m = r.Send(m, tuitest.KeyEnter())

	assert.Empty(t, client.SearchCalls)
	assert.Contains(t, tuitest.StripANSI(r.Render(m)), "Type a query and press Enter to search")
}

func TestModel_Pagination(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())
	m = r.Send(m, tuitest.KeyPgDown())

	require.Len(t, client.SearchCalls, 2)
	assert.Equal(t, 1, client.SearchCalls[1].Page)
	assert.Equal(t, "acme", client.SearchCalls[1].Query)

	view := tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, "Page 2 of 3")
	assert.Contains(t, view, "PAY-000011")
	assert.Contains(t, view, "[PgUp] Previous")

	m = r.Send(m, tuitest.KeyPgDown())
	m = r.Send(m, tuitest.KeyPgDown())
	assert.Len(t, client.SearchCalls, 3, "no request past the last page")
	assert.Contains(t, tuitest.StripANSI(r.Render(m)), "Page 3 of 3")

	m = r.Send(m, tuitest.KeyPgUp())
	require.Len(t, client.SearchCalls, 4)
	assert.Equal(t, 1, client.SearchCalls[3].Page)
}

func TestModel_PaginateWithoutQuery(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	r.Send(m, tuitest.KeyPgDown())

	assert.Empty(t, client.SearchCalls)
}

func TestModel_ScopeToggle(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	// Before any search a toggle only changes the scope.
	m = r.Send(m, tuitest.KeyCtrl('p'))
	assert.Empty(t, client.SearchCalls)
	assert.Contains(t, tuitest.StripANSI(r.Render(m)), "[ ] Payments")

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())
	m = r.Send(m, tuitest.KeyPgDown())
	m = r.Send(m, tuitest.KeyCtrl('d'))

	require.Len(t, client.SearchCalls, 3)
	last := client.SearchCalls[2]
	assert.Equal(t, 0, last.Page, "scope change restarts from the first page")
	assert.Equal(t, model.Scope{Payments: false, Deposits: false, Loans: true}, last.Scope())

	// Excluding the last remaining family is refused.
	m = r.Send(m, tuitest.KeyCtrl('o'))
	assert.Len(t, client.SearchCalls, 3)
	assert.Contains(t, tuitest.StripANSI(r.Render(m)), "[x] Loans")
}

func TestModel_SearchFailure(t *testing.T) {
	client := newAcmeClient()
	client.SearchFn = func(context.Context, model.SearchRequest) (model.SearchResponse, error) {
		return model.SearchResponse{}, errors.New("503 from upstream")
	}
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())

	view := tuitest.StripANSI(r.Render(m))
	assert.Contains(t, view, "✗ search failed, try again")
	assert.NotContains(t, view, "503")
	assert.NotContains(t, view, "results found")
}

func TestModel_AcceptSuggestion(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyTab())

	require.Len(t, client.SearchCalls, 1)
	assert.Equal(t, "Acme Supplies Ltd", client.SearchCalls[0].Query)
	assert.Equal(t, "Acme Supplies Ltd", m.(Model).input.Value())
}

func TestModel_SelectSuggestionWithArrows(t *testing.T) {
	client := newAcmeClient()
	m, r := newTestModel(client)

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyDown())
	m = r.Send(m, tuitest.KeyDown())
	assert.Equal(t, 1, m.(Model).suggestions.Selected())

	m = r.Send(m, tuitest.KeyEnter())

	require.Len(t, client.SearchCalls, 1)
	assert.Equal(t, "Acme Holdings", client.SearchCalls[0].Query)

	// Wraps back to no selection and then to the last item.
	m = typeText(r, m, "x")
	m = r.Send(m, tuitest.KeyUp())
	assert.Equal(t, 1, m.(Model).suggestions.Selected())
	m = r.Send(m, tuitest.KeyDown())
	assert.Equal(t, -1, m.(Model).suggestions.Selected())
}

func TestModel_History(t *testing.T) {
	store := &fakeHistory{entries: []storage.HistoryEntry{
		{Query: "loan arrears", LastUsed: time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)},
		{Query: "globex", LastUsed: time.Date(2024, 5, 28, 17, 5, 0, 0, time.UTC)},
	}}
	client := newAcmeClient()
	m, r := newTestModel(client, WithHistory(store, 5))

	view := tuitest.StripANSI(r.Render(m))
	assert.True(t, tuitest.ContainsInOrder(view, "Recent searches", "loan arrears", "Jun 1 08:30", "globex"))

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())

	store.mu.Lock()
	assert.Equal(t, "acme", store.entries[0].Query)
	store.mu.Unlock()

	// Clearing the input brings recent searches back, newest first.
	for range 4 {
		m = r.Send(m, tuitest.KeyBackspace())
	}
	view = tuitest.StripANSI(r.Render(m))
	assert.True(t, tuitest.ContainsInOrder(view, "Recent searches", "acme", "loan arrears"))

	m = r.Send(m, tuitest.KeyTab())
	require.Len(t, client.SearchCalls, 2)
	assert.Equal(t, "acme", client.SearchCalls[1].Query)
}

func TestModel_HistoryFailureIsIgnored(t *testing.T) {
	store := &fakeHistory{err: errors.New("disk full")}
	client := newAcmeClient()
	m, r := newTestModel(client, WithHistory(store, 5))

	m = typeText(r, m, "acme")
	m = r.Send(m, tuitest.KeyEnter())

	view := tuitest.StripANSI(r.Render(m))
	assert.NotContains(t, view, "Recent searches")
	assert.Contains(t, view, `25 results found for "acme"`)
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"escape", tuitest.KeyEsc()},
		{"ctrl+c", tuitest.KeyCtrl('c')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, r := newTestModel(newAcmeClient())

			next, cmd := r.Update(m, tt.key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, next.View())
			assert.True(t, next.(Model).pipeline.Closed())
		})
	}
}

func TestModel_WindowResize(t *testing.T) {
	m, r := newTestModel(backend.NewMockClient())

	m = r.Send(m, tuitest.WindowSize(60, 20))

	assert.Equal(t, 60, m.(Model).width)
	assert.Equal(t, 20, m.(Model).height)
	assert.Equal(t, 50, m.(Model).input.Width)
}

func TestModel_Recorder(t *testing.T) {
	assert.Empty(t, NewRecorder(false).Dir())

	rec := NewRecorder(true)
	require.NotEmpty(t, rec.Dir())
	t.Cleanup(func() {
		rec.Close()
		_ = os.RemoveAll(rec.Dir())
	})

	m, r := newTestModel(newAcmeClient(), WithRecorder(rec))
	typeText(r, m, "ac")

	frames, err := filepath.Glob(filepath.Join(rec.Dir(), "*"))
	require.NoError(t, err)
	assert.Greater(t, len(frames), 1, "expected the log plus at least one frame")
}
