package models

import "errors"

// ErrEmptyQuery is returned by Validate when the query text is empty.
var ErrEmptyQuery = errors.New("query cannot be empty")

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// SearchQuery represents a search request.
type SearchQuery struct {
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	// Links requests document links whose titles match the query.
	Links bool `json:"links,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns ErrEmptyQuery if the query is empty; otherwise clamps limit and offset.
func (q *SearchQuery) Validate() error {
	return q.ValidateWithLimits(DefaultLimit, MaxLimit)
}

// ValidateWithLimits is Validate with configurable default and maximum limits.
func (q *SearchQuery) ValidateWithLimits(defaultLimit, maxLimit int) error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}
