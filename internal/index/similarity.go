package index

import "strings"

// trigrams returns the padded character trigrams of each word in s, the way
// PostgreSQL's pg_trgm extracts them.
func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(s) {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// trigramSimilarity is the shared-trigram ratio of a and b in [0,1].
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

// bestSimilarity compares query against each field and each word in it.
func bestSimilarity(query string, fields ...string) float64 {
	best := 0.0
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		best = max(best, trigramSimilarity(query, f))
		for _, w := range tokenize(f) {
			best = max(best, trigramSimilarity(query, w))
		}
	}
	return round2(best)
}
