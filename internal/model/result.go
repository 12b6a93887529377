package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EntityType identifies the kind of financial record behind a result.
type EntityType string

// Entity types reported by the index.
const (
	EntityPayment EntityType = "payment"
	EntityDeposit EntityType = "deposit"
	EntityLoan    EntityType = "loan"
	EntityOther   EntityType = "other"
)

// ParseEntityType normalizes a wire value; anything unrecognized is EntityOther.
func ParseEntityType(s string) EntityType {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityPayment:
		return EntityPayment
	case EntityDeposit:
		return EntityDeposit
	case EntityLoan:
		return EntityLoan
	default:
		return EntityOther
	}
}

// UnmarshalJSON normalizes unknown entity types to EntityOther.
func (t *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("entity type: %w", err)
	}
	*t = ParseEntityType(s)
	return nil
}

// Label returns a capitalized display name.
func (t EntityType) Label() string {
	if t == "" {
		return "Other"
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// timestampLayouts covers RFC 3339 and the zone-less form the index emits.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a point in time that tolerates timestamps without a zone.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts any of the supported layouts, or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			ts.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

// MarshalJSON writes the zone-less layout used on the wire.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format("2006-01-02T15:04:05"))
}

// SearchResult is one ranked hit. Rank is an opaque relevance score in [0,1].
type SearchResult struct {
	Date              Timestamp  `json:"date"`
	EntityType        EntityType `json:"entityType"`
	PrimaryIdentifier string     `json:"primaryIdentifier"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	PartyInfo         string     `json:"partyInfo"`
	Description       string     `json:"description"`
	ReferenceNumber   string     `json:"referenceNumber"`
	EntityID          int64      `json:"entityId"`
	Amount            float64    `json:"amount"`
	Rank              float64    `json:"rank"`
}

// Key identifies the result across pages.
func (r SearchResult) Key() string {
	return fmt.Sprintf("%s-%d", r.EntityType, r.EntityID)
}

// SearchResponse is one page of results as reported by the index.
type SearchResponse struct {
	Content       []SearchResult `json:"content"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Size          int            `json:"size"`
	Number        int            `json:"number"`
}
