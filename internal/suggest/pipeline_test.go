package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTick fires immediately and records the requested delays.
type instantTick struct {
	delays []time.Duration
}

func (it *instantTick) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	it.delays = append(it.delays, d)
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestPipeline(client backend.Suggester) (Pipeline, *instantTick) {
	it := &instantTick{}
	cfg := DefaultConfig()
	cfg.Tick = it.tick
	return New(client, cfg), it
}

// settle runs cmd and feeds every resulting message back into the pipeline
// until no command remains.
func settle(t *testing.T, p Pipeline, cmd tea.Cmd) Pipeline {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 10, "pipeline did not settle")
		p, cmd = p.Update(cmd())
	}
	return p
}

func TestPipeline_ShortInputIssuesNoCalls(t *testing.T) {
	for _, input := range []string{"", " ", "a", "  b  ", "\tz\n"} {
		t.Run(input, func(t *testing.T) {
			client := backend.NewMockClient()
			p, it := newTestPipeline(client)

			p, cmd := p.Edit(input)

			assert.Nil(t, cmd)
			assert.Empty(t, it.delays)
			assert.Empty(t, p.Suggestions())
			assert.Empty(t, p.Spelling())
			assert.False(t, p.Loading())
			assert.Equal(t, StatusIdle, p.Status())
			assert.Zero(t, client.CallCount())
		})
	}
}

func TestPipeline_DebounceCoalescesEdits(t *testing.T) {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(_ context.Context, prefix string, _ int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{
			OriginalQuery: prefix,
			Suggestions:   []model.AutocompleteSuggestion{{Text: "deposit", Source: "entity_type"}},
		}, nil
	}
	p, it := newTestPipeline(client)

	var cmds []tea.Cmd
	var epochs []uint64
	for _, text := range []string{"de", "dep", "depo"} {
		var cmd tea.Cmd
		p, cmd = p.Edit(text)
		require.NotNil(t, cmd)
		cmds = append(cmds, cmd)
		epochs = append(epochs, uint64(p.Epoch()))
	}

	assert.Equal(t, []time.Duration{DefaultDebounce, DefaultDebounce, DefaultDebounce}, it.delays)
	assert.Equal(t, epochs[0], epochs[1], "edits inside one window share an epoch")
	assert.Equal(t, epochs[0], epochs[2])
	assert.Equal(t, StatusWaiting, p.Status())

	// Earlier windows were restarted; their ticks do nothing.
	var fetch tea.Cmd
	for i, cmd := range cmds {
		var next tea.Cmd
		p, next = p.Update(cmd())
		if i < len(cmds)-1 {
			assert.Nil(t, next)
		} else {
			fetch = next
		}
	}
	require.NotNil(t, fetch)
	assert.True(t, p.Loading())
	assert.Equal(t, StatusLoading, p.Status())

	p = settle(t, p, fetch)

	require.Len(t, client.AutocompleteCalls, 1)
	assert.Equal(t, backend.SuggestCall{Text: "depo", Limit: 10}, client.AutocompleteCalls[0])
	assert.Empty(t, client.SpellingCalls)
	assert.Equal(t, []model.AutocompleteSuggestion{{Text: "deposit", Source: "entity_type"}}, p.Suggestions())
	assert.Empty(t, p.Spelling())
	assert.False(t, p.Loading())
	assert.Equal(t, StatusSuggestions, p.Status())
}

func TestPipeline_SpellingFallback(t *testing.T) {
	client := backend.NewMockClient()
	client.SpellingFn = func(_ context.Context, term string, _ int) (model.SpellingResponse, error) {
		return model.SpellingResponse{
			OriginalQuery: term,
			Suggestions:   []model.SpellingSuggestion{{Text: "deposit", Similarity: 0.82}},
		}, nil
	}
	p, _ := newTestPipeline(client)

	p, cmd := p.Edit("depst")
	p = settle(t, p, cmd)

	require.Len(t, client.AutocompleteCalls, 1)
	require.Len(t, client.SpellingCalls, 1)
	assert.Equal(t, backend.SuggestCall{Text: "depst", Limit: 5}, client.SpellingCalls[0])
	assert.Empty(t, p.Suggestions())
	assert.Equal(t, []model.SpellingSuggestion{{Text: "deposit", Similarity: 0.82}}, p.Spelling())
	assert.Equal(t, StatusSpelling, p.Status())
}

func TestPipeline_BothEmptyIsTerminal(t *testing.T) {
	client := backend.NewMockClient()
	p, _ := newTestPipeline(client)

	p, cmd := p.Edit("zzzz")
	p = settle(t, p, cmd)

	assert.Empty(t, p.Suggestions())
	assert.Empty(t, p.Spelling())
	assert.False(t, p.Loading())
	assert.Equal(t, StatusEmpty, p.Status())
}

func TestPipeline_SuggestionsClearSpelling(t *testing.T) {
	client := backend.NewMockClient()
	client.SpellingFn = func(_ context.Context, _ string, _ int) (model.SpellingResponse, error) {
		return model.SpellingResponse{Suggestions: []model.SpellingSuggestion{{Text: "loan", Similarity: 0.6}}}, nil
	}
	p, _ := newTestPipeline(client)

	p, cmd := p.Edit("lon")
	p = settle(t, p, cmd)
	require.NotEmpty(t, p.Spelling())

	client.AutocompleteFn = func(_ context.Context, _ string, _ int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{Suggestions: []model.AutocompleteSuggestion{{Text: "loan", Source: "entity_type"}}}, nil
	}
	p, cmd = p.Edit("loa")
	p = settle(t, p, cmd)

	assert.NotEmpty(t, p.Suggestions())
	assert.Empty(t, p.Spelling())
}

func TestPipeline_StaleAutocompleteDiscarded(t *testing.T) {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(_ context.Context, prefix string, _ int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{
			OriginalQuery: prefix,
			Suggestions:   []model.AutocompleteSuggestion{{Text: prefix + "-result", Source: "test"}},
		}, nil
	}
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("pay")
	p, slowFetch := p.Update(tick())
	require.NotNil(t, slowFetch)

	// The user keeps typing before the first response arrives.
	p, tick = p.Edit("paym")
	p, fastFetch := p.Update(tick())
	require.NotNil(t, fastFetch)

	p = settle(t, p, fastFetch)
	assert.Equal(t, "paym-result", p.Suggestions()[0].Text)

	// The slow response for "pay" lands afterwards and must not win.
	p, cmd := p.Update(slowFetch())
	assert.Nil(t, cmd)
	assert.Equal(t, "paym-result", p.Suggestions()[0].Text)
	assert.False(t, p.Loading())
}

func TestPipeline_StaleSpellingDiscarded(t *testing.T) {
	client := backend.NewMockClient()
	client.SpellingFn = func(_ context.Context, term string, _ int) (model.SpellingResponse, error) {
		return model.SpellingResponse{Suggestions: []model.SpellingSuggestion{{Text: term + "!", Similarity: 0.5}}}, nil
	}
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("depst")
	p, fetch := p.Update(tick())
	p, spell := p.Update(fetch())
	require.NotNil(t, spell)

	p, _ = p.Edit("x")
	p, cmd := p.Update(spell())

	assert.Nil(t, cmd)
	assert.Empty(t, p.Spelling())
	assert.Equal(t, StatusIdle, p.Status())
}

func TestPipeline_ShortEditCancelsPendingWindow(t *testing.T) {
	client := backend.NewMockClient()
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("pa")
	p, _ = p.Edit("p")
	p, cmd := p.Update(tick())

	assert.Nil(t, cmd)
	assert.Zero(t, client.CallCount())
	assert.Equal(t, "p", p.Input())
}

func TestPipeline_FailureFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*backend.MockClient)
	}{
		{
			name: "autocomplete fails",
			setup: func(c *backend.MockClient) {
				c.AutocompleteFn = func(context.Context, string, int) (model.AutocompleteResponse, error) {
					return model.AutocompleteResponse{}, errors.New("connection refused")
				}
			},
		},
		{
			name: "spelling fails",
			setup: func(c *backend.MockClient) {
				c.SpellingFn = func(context.Context, string, int) (model.SpellingResponse, error) {
					return model.SpellingResponse{}, errors.New("502 bad gateway")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := backend.NewMockClient()
			tt.setup(client)
			p, _ := newTestPipeline(client)

			p, cmd := p.Edit("depst")
			p = settle(t, p, cmd)

			assert.Empty(t, p.Suggestions())
			assert.Empty(t, p.Spelling())
			assert.False(t, p.Loading())
			assert.Equal(t, StatusEmpty, p.Status())
		})
	}
}

func TestPipeline_FailureDoesNotRetry(t *testing.T) {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(context.Context, string, int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{}, errors.New("timeout")
	}
	p, _ := newTestPipeline(client)

	p, cmd := p.Edit("loan")
	_ = settle(t, p, cmd)

	assert.Len(t, client.AutocompleteCalls, 1)
	assert.Empty(t, client.SpellingCalls)
}

func TestPipeline_StaleFailureKeepsNewerState(t *testing.T) {
	client := backend.NewMockClient()
	fail := true
	client.AutocompleteFn = func(_ context.Context, prefix string, _ int) (model.AutocompleteResponse, error) {
		if fail {
			return model.AutocompleteResponse{}, errors.New("boom")
		}
		return model.AutocompleteResponse{Suggestions: []model.AutocompleteSuggestion{{Text: prefix, Source: "test"}}}, nil
	}
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("acme")
	p, failing := p.Update(tick())
	failed := failing()

	fail = false
	p, cmd := p.Edit("acme corp")
	p = settle(t, p, cmd)
	require.Len(t, p.Suggestions(), 1)

	p, _ = p.Update(failed)
	assert.Equal(t, "acme corp", p.Suggestions()[0].Text)
}

func TestPipeline_Close(t *testing.T) {
	client := backend.NewMockClient()
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("deposit")
	p = p.Close()

	p, cmd := p.Update(tick())
	assert.Nil(t, cmd)
	assert.True(t, p.Closed())
	assert.False(t, p.Loading())

	p, cmd = p.Edit("deposits")
	assert.Nil(t, cmd)
	assert.Zero(t, client.CallCount())
}

func TestPipeline_CloseDiscardsInFlight(t *testing.T) {
	client := backend.NewMockClient()
	client.AutocompleteFn = func(context.Context, string, int) (model.AutocompleteResponse, error) {
		return model.AutocompleteResponse{Suggestions: []model.AutocompleteSuggestion{{Text: "x"}}}, nil
	}
	p, _ := newTestPipeline(client)

	p, tick := p.Edit("xx")
	p, fetch := p.Update(tick())
	p = p.Close()

	p, _ = p.Update(fetch())
	assert.Empty(t, p.Suggestions())
}

func TestPipeline_IgnoresUnrelatedMessages(t *testing.T) {
	p, _ := newTestPipeline(backend.NewMockClient())
	p, _ = p.Edit("loan")

	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, p.Epoch(), next.Epoch())
	assert.Equal(t, p.Status(), next.Status())
	assert.Equal(t, "loan", next.Input())
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Debounce: 50 * time.Millisecond}.withDefaults()

	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
	assert.Equal(t, DefaultMinLength, cfg.MinLength)
	assert.Equal(t, 10, cfg.AutocompleteLimit)
	assert.Equal(t, 5, cfg.SpellingLimit)
	assert.NotNil(t, cfg.Tick)
}
