package model

// PageState is a complete snapshot of one page of results. It is replaced
// wholesale on every successful fetch and never patched in place.
type PageState struct {
	Items            []SearchResult
	CurrentPageIndex int
	PageSize         int
	TotalPages       int
	TotalElements    int
}

// NewPageState builds the page for a response to the given query. Items beyond
// the requested size are dropped; TotalPages is taken from the response as is.
func NewPageState(q Query, resp SearchResponse) PageState {
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	items := resp.Content
	if len(items) > size {
		items = items[:size]
	}
	return PageState{
		CurrentPageIndex: q.Page,
		PageSize:         size,
		TotalPages:       resp.TotalPages,
		TotalElements:    resp.TotalElements,
		Items:            append([]SearchResult(nil), items...),
	}
}

// Empty reports whether the page holds no results.
func (p PageState) Empty() bool {
	return len(p.Items) == 0
}

// HasNext reports whether a later page exists.
func (p PageState) HasNext() bool {
	return p.CurrentPageIndex+1 < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p PageState) HasPrev() bool {
	return p.CurrentPageIndex > 0
}
