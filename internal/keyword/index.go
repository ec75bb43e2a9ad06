// Package keyword indexes document filenames so a query can link to matching documents.
package keyword

import (
	"context"

	"github.com/hyperjump/kiji/internal/models"
)

// SearchOptions optional parameters for link search. Nil means use defaults.
type SearchOptions struct {
	// Extensions keeps only documents with one of these extensions (".pdf").
	// Empty means any extension.
	Extensions []string
	// PhraseBoost multiplies the score of titles containing the query as a phrase.
	PhraseBoost float64
}

// LinkIndex defines filename indexing and search operations.
type LinkIndex interface {
	Index(ctx context.Context, id string, doc *models.Document) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*LinkResult, error)
	Delete(ctx context.Context, id string) error
	Close() error
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
}

// LinkResult is a single filename hit.
type LinkResult struct {
	ID    string
	Name  string
	Path  string
	Score float64
}
