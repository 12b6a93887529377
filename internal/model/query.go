package model

import "strings"

// DefaultPageSize is the number of results requested per page.
const DefaultPageSize = 10

// Scope selects which entity families a search covers.
type Scope struct {
	Payments bool
	Deposits bool
	Loans    bool
}

// DefaultScope includes every entity family.
func DefaultScope() Scope {
	return Scope{Payments: true, Deposits: true, Loans: true}
}

// All reports whether every entity family is included.
func (s Scope) All() bool {
	return s.Payments && s.Deposits && s.Loans
}

// None reports whether every entity family is excluded.
func (s Scope) None() bool {
	return !s.Payments && !s.Deposits && !s.Loans
}

// Includes reports whether results of the given type fall inside the scope.
// Results of type other are only included when the scope is unrestricted.
func (s Scope) Includes(t EntityType) bool {
	switch t {
	case EntityPayment:
		return s.Payments
	case EntityDeposit:
		return s.Deposits
	case EntityLoan:
		return s.Loans
	default:
		return s.All()
	}
}

// Query is a committed search: the text the user settled on plus scope and
// pagination coordinates. A new commit supersedes it; it is never mutated.
type Query struct {
	Text  string
	Scope Scope
	Page  int
	Size  int
}

// NewQuery creates a first-page query with the default scope and page size.
func NewQuery(text string) Query {
	return Query{
		Text:  text,
		Scope: DefaultScope(),
		Page:  0,
		Size:  DefaultPageSize,
	}
}

// Blank reports whether the query text is empty once whitespace is trimmed.
func (q Query) Blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// WithPage returns a copy of the query pointing at another page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// Request converts the query into its wire representation.
func (q Query) Request() SearchRequest {
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	payments, deposits, loans := q.Scope.Payments, q.Scope.Deposits, q.Scope.Loans
	return SearchRequest{
		Query:           q.Text,
		Page:            q.Page,
		Size:            size,
		IncludePayments: &payments,
		IncludeDeposits: &deposits,
		IncludeLoans:    &loans,
	}
}

// SearchRequest is the body of a search call.
type SearchRequest struct {
	IncludePayments *bool  `json:"includePayments,omitempty"`
	IncludeDeposits *bool  `json:"includeDeposits,omitempty"`
	IncludeLoans    *bool  `json:"includeLoans,omitempty"`
	Query           string `json:"query"`
	Page            int    `json:"page"`
	Size            int    `json:"size"`
}

// Scope resolves the request's inclusion flags; missing flags default to true.
func (r SearchRequest) Scope() Scope {
	flag := func(b *bool) bool { return b == nil || *b }
	return Scope{
		Payments: flag(r.IncludePayments),
		Deposits: flag(r.IncludeDeposits),
		Loans:    flag(r.IncludeLoans),
	}
}
