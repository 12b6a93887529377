package index

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
)

func fixtureRecords() []model.SearchResult {
	return []model.SearchResult{
		{
			EntityType:        model.EntityPayment,
			EntityID:          1,
			PrimaryIdentifier: "PAY-000001",
			PartyInfo:         "Acme Supplies Ltd",
			Description:       "invoice settlement",
			ReferenceNumber:   "REF0001",
			Status:            "COMPLETED",
			Currency:          "USD",
			Amount:            1250.50,
		},
		{
			EntityType:        model.EntityDeposit,
			EntityID:          2,
			PrimaryIdentifier: "DEP-000002",
			PartyInfo:         "Acme Holdings",
			Description:       "wire deposit",
			ReferenceNumber:   "REF0002",
			Status:            "CLEARED",
			Currency:          "EUR",
			Amount:            9000,
		},
		{
			EntityType:        model.EntityLoan,
			EntityID:          3,
			PrimaryIdentifier: "LN-000003",
			PartyInfo:         "Cyberdyne Capital",
			Description:       "term loan drawdown",
			ReferenceNumber:   "REF0003",
			Status:            "ACTIVE",
			Currency:          "USD",
			Amount:            250000,
		},
	}
}

func buildFixture(t *testing.T) *Index {
	t.Helper()
	x, err := Build(fixtureRecords(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func searchRequest(text string, scope model.Scope) model.SearchRequest {
	q := model.NewQuery(text)
	q.Scope = scope
	return q.Request()
}

func TestIndex_Search(t *testing.T) {
	x := buildFixture(t)
	ctx := context.Background()

	t.Run("all scopes", func(t *testing.T) {
		resp, err := x.Search(ctx, searchRequest("acme", model.DefaultScope()))
		require.NoError(t, err)
		assert.Equal(t, 2, resp.TotalElements)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Content, 2)
		assert.InDelta(t, 1.0, resp.Content[0].Rank, 0.0001)
		for _, r := range resp.Content {
			assert.Contains(t, r.PartyInfo, "Acme")
		}
	})

	t.Run("restricted scope", func(t *testing.T) {
		scope := model.Scope{Payments: true}
		resp, err := x.Search(ctx, searchRequest("acme", scope))
		require.NoError(t, err)
		require.Len(t, resp.Content, 1)
		assert.Equal(t, model.EntityPayment, resp.Content[0].EntityType)
		assert.Equal(t, int64(1), resp.Content[0].EntityID)
	})

	t.Run("empty scope", func(t *testing.T) {
		resp, err := x.Search(ctx, searchRequest("acme", model.Scope{}))
		require.NoError(t, err)
		assert.Empty(t, resp.Content)
		assert.Zero(t, resp.TotalElements)
	})

	t.Run("blank query", func(t *testing.T) {
		resp, err := x.Search(ctx, model.SearchRequest{Query: "   "})
		require.NoError(t, err)
		assert.Empty(t, resp.Content)
		assert.Equal(t, model.DefaultPageSize, resp.Size)
	})

	t.Run("no match", func(t *testing.T) {
		resp, err := x.Search(ctx, searchRequest("zeppelin", model.DefaultScope()))
		require.NoError(t, err)
		assert.Empty(t, resp.Content)
		assert.Zero(t, resp.TotalPages)
	})
}

func TestIndex_SearchPaging(t *testing.T) {
	records := make([]model.SearchResult, 25)
	for i := range records {
		records[i] = model.SearchResult{
			EntityType:        model.EntityPayment,
			EntityID:          int64(i + 1),
			PrimaryIdentifier: fmt.Sprintf("PAY-%06d", i+1),
			PartyInfo:         "Globex Corporation",
		}
	}
	x, err := Build(records, nil)
	require.NoError(t, err)
	defer func() { _ = x.Close() }()

	req := model.SearchRequest{Query: "globex", Page: 2, Size: 10}
	resp, err := x.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 25, resp.TotalElements)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.Number)
	assert.Equal(t, 10, resp.Size)
	assert.Len(t, resp.Content, 5)
}

func TestIndex_Autocomplete(t *testing.T) {
	x := buildFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"whole values first alphabetically", "ac", 10, []string{"Acme Holdings", "Acme Supplies Ltd", "active"}},
		{"limit applies", "ac", 2, []string{"Acme Holdings", "Acme Supplies Ltd"}},
		{"word prefix", "sup", 10, []string{"Acme Supplies Ltd"}},
		{"identifier", "pay-", 10, []string{"PAY-000001"}},
		{"case insensitive", "CYBER", 10, []string{"Cyberdyne Capital"}},
		{"nothing matches", "zz", 10, []string{}},
		{"blank", "  ", 10, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := x.Autocomplete(ctx, tt.prefix, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, resp.OriginalQuery)

			got := make([]string, 0, len(resp.Suggestions))
			for _, s := range resp.Suggestions {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_AutocompleteSource(t *testing.T) {
	x := buildFixture(t)

	resp, err := x.Autocomplete(context.Background(), "REF0002", 10)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, SourceReference, resp.Suggestions[0].Source)
}

func TestIndex_AutocompleteCanceled(t *testing.T) {
	x := buildFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Autocomplete(ctx, "ac", 10)
	assert.ErrorIs(t, err, common.ErrBackend)
}

func TestIndex_SpellingSuggestions(t *testing.T) {
	x := buildFixture(t)
	ctx := context.Background()

	resp, err := x.SpellingSuggestions(ctx, "depost", 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "deposit", resp.Suggestions[0].Text)
	assert.Greater(t, resp.Suggestions[0].Similarity, minSpellingSimilarity)

	resp, err = x.SpellingSuggestions(ctx, "deposit", 5)
	require.NoError(t, err)
	for _, s := range resp.Suggestions {
		assert.NotEqual(t, "deposit", s.Text, "exact words are not corrections")
	}

	resp, err = x.SpellingSuggestions(ctx, "qqqqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
}

func TestIndex_FuzzySearch(t *testing.T) {
	x := buildFixture(t)
	ctx := context.Background()

	results, err := x.FuzzySearch(ctx, "acme suplies", 0.3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].EntityID)
	for i, r := range results {
		assert.GreaterOrEqual(t, r.Rank, 0.3)
		if i > 0 {
			assert.LessOrEqual(t, r.Rank, results[i-1].Rank)
		}
	}

	results, err = x.FuzzySearch(ctx, "acme suplies", 0.95)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = x.FuzzySearch(ctx, "", 0.3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_FuzzySearchIdentifiers(t *testing.T) {
	records := Sample(200, 42)
	x, err := Build(records, nil)
	require.NoError(t, err)
	defer func() { _ = x.Close() }()

	target := records[7]
	tests := []struct {
		name  string
		query string
	}{
		{"primary identifier", target.PrimaryIdentifier},
		{"lowercase identifier", strings.ToLower(target.PrimaryIdentifier)},
		{"reference number", target.ReferenceNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := x.FuzzySearch(context.Background(), tt.query, 0.3)
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, target.Key(), results[0].Key())
			assert.InDelta(t, 1.0, results[0].Rank, 0.0001)
		})
	}
}

func TestBuild_Progress(t *testing.T) {
	var seen []int
	x, err := Build(Sample(250, 1), func(n int) { seen = append(seen, n) })
	require.NoError(t, err)
	defer func() { _ = x.Close() }()

	assert.Equal(t, []int{100, 200, 250}, seen)
	assert.Equal(t, 250, x.Len())
}

func TestSample_Deterministic(t *testing.T) {
	a := Sample(20, 7)
	b := Sample(20, 7)
	require.Len(t, a, 20)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Sample(20, 8))

	keys := make(map[string]bool)
	for _, r := range a {
		assert.NotEqual(t, model.EntityOther, r.EntityType)
		assert.NotEmpty(t, r.PrimaryIdentifier)
		keys[r.Key()] = true
	}
	assert.Len(t, keys, 20)
}

func TestTrigramSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, trigramSimilarity("deposit", "Deposit"), 0.0001)
	assert.Zero(t, trigramSimilarity("abc", "xyz"))
	assert.Zero(t, trigramSimilarity("", "xyz"))
	assert.InDelta(t, 0.63, bestSimilarity("acme suplies", "Acme Supplies Ltd"), 0.01)
	assert.InDelta(t, 0.38, bestSimilarity("acme suplies", "Acme Holdings"), 0.01)
}
