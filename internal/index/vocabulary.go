package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/xrash/smetrics"
)

// Autocomplete sources, named after the field a suggestion came from.
const (
	SourceIdentifier = "primary_identifier"
	SourceParty      = "party"
	SourceReference  = "reference"
	SourceStatus     = "status"
	SourceEntityType = "entity_type"
	SourceCurrency   = "currency"
)

// vocabulary tracks the distinct values and words of indexed records.
type vocabulary struct {
	values map[string]model.AutocompleteSuggestion
	words  map[string]struct{}
}

func newVocabulary() *vocabulary {
	return &vocabulary{
		values: make(map[string]model.AutocompleteSuggestion),
		words:  make(map[string]struct{}),
	}
}

func (v *vocabulary) add(r model.SearchResult) {
	v.addValue(r.PrimaryIdentifier, SourceIdentifier)
	v.addValue(r.PartyInfo, SourceParty)
	v.addValue(r.ReferenceNumber, SourceReference)
	v.addValue(strings.ToLower(r.Status), SourceStatus)
	v.addValue(string(r.EntityType), SourceEntityType)
	v.addValue(r.Currency, SourceCurrency)

	for _, text := range []string{r.PartyInfo, r.Description, r.Status, string(r.EntityType)} {
		for _, w := range tokenize(text) {
			if len(w) >= 3 {
				v.words[w] = struct{}{}
			}
		}
	}
}

func (v *vocabulary) addValue(value, source string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	key := strings.ToLower(value)
	if _, ok := v.values[key]; ok {
		return
	}
	v.values[key] = model.AutocompleteSuggestion{Text: value, Source: source}
}

// complete returns values whose text, or one of whose words, starts with prefix.
// Whole-value matches rank before word matches; ties break alphabetically.
func (v *vocabulary) complete(prefix string, limit int) []model.AutocompleteSuggestion {
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return []model.AutocompleteSuggestion{}
	}

	type candidate struct {
		s     model.AutocompleteSuggestion
		key   string
		whole bool
	}
	var found []candidate
	for key, s := range v.values {
		switch {
		case strings.HasPrefix(key, p):
			found = append(found, candidate{s: s, key: key, whole: true})
		case wordHasPrefix(key, p):
			found = append(found, candidate{s: s, key: key})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].whole != found[j].whole {
			return found[i].whole
		}
		return found[i].key < found[j].key
	})

	out := make([]model.AutocompleteSuggestion, 0, min(limit, len(found)))
	for _, c := range found {
		if len(out) == limit {
			break
		}
		out = append(out, c.s)
	}
	return out
}

// correct returns known words similar to term, most similar first.
func (v *vocabulary) correct(term string, limit int, minSimilarity float64) []model.SpellingSuggestion {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return []model.SpellingSuggestion{}
	}

	out := []model.SpellingSuggestion{}
	for w := range v.words {
		if w == t {
			continue
		}
		sim := smetrics.JaroWinkler(t, w, 0.7, 4)
		if sim >= minSimilarity {
			out = append(out, model.SpellingSuggestion{Text: w, Similarity: round2(sim)})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Text < out[j].Text
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func wordHasPrefix(s, prefix string) bool {
	for _, w := range tokenize(s) {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
