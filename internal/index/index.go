// Package index is an in-memory search index over cash-management records.
// It implements the backend contract locally so the client can be developed
// and tested without the real search service.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	batchSize = 100
	// fuzzyCandidates bounds how many fuzzy hits are scored by similarity.
	fuzzyCandidates = 200
	// minSpellingSimilarity drops corrections that are too far from the term.
	minSpellingSimilarity = 0.75
)

// document is the indexed form of a record.
type document struct {
	EntityType        string `json:"entityType"`
	PrimaryIdentifier string `json:"primaryIdentifier"`
	PartyInfo         string `json:"partyInfo"`
	Description       string `json:"description"`
	ReferenceNumber   string `json:"referenceNumber"`
	Status            string `json:"status"`
	Currency          string `json:"currency"`
}

// ProgressFunc is called after each indexed batch with the running total.
type ProgressFunc func(indexed int)

// Index holds the bleve index plus the vocabularies used for suggestions.
type Index struct {
	idx     bleve.Index
	records map[string]model.SearchResult
	vocab   *vocabulary
	mu      sync.RWMutex
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{
		idx:     idx,
		records: make(map[string]model.SearchResult),
		vocab:   newVocabulary(),
	}, nil
}

// Build creates an index holding records.
func Build(records []model.SearchResult, progress ProgressFunc) (*Index, error) {
	x, err := New()
	if err != nil {
		return nil, err
	}
	if err := x.Add(records, progress); err != nil {
		_ = x.Close()
		return nil, err
	}
	return x, nil
}

func newMapping() *mapping.IndexMappingImpl {
	entityType := bleve.NewTextFieldMapping()
	entityType.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("entityType", entityType)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Add indexes records in batches.
func (x *Index) Add(records []model.SearchResult, progress ProgressFunc) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		batch := x.idx.NewBatch()
		for _, r := range records[start:end] {
			id := r.Key()
			if err := batch.Index(id, toDocument(r)); err != nil {
				return fmt.Errorf("failed to index %s: %w", id, err)
			}
			x.records[id] = r
			x.vocab.add(r)
		}
		if err := x.idx.Batch(batch); err != nil {
			return fmt.Errorf("failed to apply batch: %w", err)
		}

		if progress != nil {
			progress(end)
		}
	}
	return nil
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Close releases the index.
func (x *Index) Close() error {
	return x.idx.Close()
}

// Search runs a full-text query restricted to the requested scope.
func (x *Index) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	size := req.Size
	if size <= 0 {
		size = model.DefaultPageSize
	}
	page := max(req.Page, 0)

	text := strings.TrimSpace(req.Query)
	if text == "" {
		return model.SearchResponse{Content: []model.SearchResult{}, Size: size, Number: page}, nil
	}

	scope := req.Scope()
	if scope.None() {
		return model.SearchResponse{Content: []model.SearchResult{}, Size: size, Number: page}, nil
	}

	match := bleve.NewMatchQuery(text)
	var q query.Query = match
	if !scope.All() {
		var types []query.Query
		for _, t := range []model.EntityType{model.EntityPayment, model.EntityDeposit, model.EntityLoan} {
			if scope.Includes(t) {
				tq := bleve.NewTermQuery(string(t))
				tq.SetField("entityType")
				types = append(types, tq)
			}
		}
		q = bleve.NewConjunctionQuery(match, bleve.NewDisjunctionQuery(types...))
	}

	sr := bleve.NewSearchRequestOptions(q, size, page*size, false)

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.idx.SearchInContext(ctx, sr)
	if err != nil {
		return model.SearchResponse{}, fmt.Errorf("%w: index search: %v", common.ErrBackend, err)
	}

	content := make([]model.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r, ok := x.records[hit.ID]
		if !ok {
			continue
		}
		r.Rank = normalize(hit.Score, res.MaxScore)
		content = append(content, r)
	}

	total := int(res.Total)
	return model.SearchResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
		Size:          size,
		Number:        page,
	}, nil
}

// Autocomplete returns indexed values that start with prefix, or contain a
// word that does.
func (x *Index) Autocomplete(ctx context.Context, prefix string, limit int) (model.AutocompleteResponse, error) {
	if err := ctx.Err(); err != nil {
		return model.AutocompleteResponse{}, fmt.Errorf("%w: %v", common.ErrBackend, err)
	}
	if limit <= 0 {
		limit = model.DefaultAutocompleteLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	return model.AutocompleteResponse{
		OriginalQuery: prefix,
		Suggestions:   x.vocab.complete(prefix, limit),
	}, nil
}

// SpellingSuggestions returns indexed words that look like term.
func (x *Index) SpellingSuggestions(ctx context.Context, term string, limit int) (model.SpellingResponse, error) {
	if err := ctx.Err(); err != nil {
		return model.SpellingResponse{}, fmt.Errorf("%w: %v", common.ErrBackend, err)
	}
	if limit <= 0 {
		limit = model.DefaultSpellingLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	return model.SpellingResponse{
		OriginalQuery: term,
		Suggestions:   x.vocab.correct(term, limit, minSpellingSimilarity),
	}, nil
}

// FuzzySearch returns records whose identifying fields are at least threshold
// similar to the query, most similar first. Rank carries the similarity.
func (x *Index) FuzzySearch(ctx context.Context, text string, threshold float64) ([]model.SearchResult, error) {
	if threshold <= 0 {
		threshold = model.DefaultFuzzyThreshold
	}
	// FuzzyQuery bypasses the analyzer, so split the way the standard analyzer does.
	words := tokenize(text)
	if len(words) == 0 {
		return []model.SearchResult{}, nil
	}

	var clauses []query.Query
	for _, w := range words {
		fq := bleve.NewFuzzyQuery(w)
		fq.SetFuzziness(2)
		clauses = append(clauses, fq)
	}
	sr := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(clauses...), fuzzyCandidates, 0, false)

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("%w: fuzzy search: %v", common.ErrBackend, err)
	}

	results := []model.SearchResult{}
	for _, hit := range res.Hits {
		r, ok := x.records[hit.ID]
		if !ok {
			continue
		}
		sim := bestSimilarity(text, r.PrimaryIdentifier, r.PartyInfo, r.ReferenceNumber, r.Description)
		if sim < threshold {
			continue
		}
		r.Rank = sim
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank > results[j].Rank
	})
	return results, nil
}

func toDocument(r model.SearchResult) document {
	return document{
		EntityType:        string(r.EntityType),
		PrimaryIdentifier: r.PrimaryIdentifier,
		PartyInfo:         r.PartyInfo,
		Description:       r.Description,
		ReferenceNumber:   r.ReferenceNumber,
		Status:            r.Status,
		Currency:          r.Currency,
	}
}

// normalize maps a bleve score into [0,1] relative to the best hit.
func normalize(score, maxScore float64) float64 {
	if maxScore <= 0 || math.IsNaN(score) {
		return 0
	}
	return math.Min(score/maxScore, 1)
}

// Ensure Index implements backend.Client.
var _ backend.Client = (*Index)(nil)
