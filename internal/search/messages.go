package search

import (
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/sequence"
)

// resultMsg carries a search response back to the controller that issued it.
type resultMsg struct {
	err   error
	query model.Query
	resp  model.SearchResponse
	epoch sequence.Tag
}
