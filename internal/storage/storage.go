// Package storage defines the persistence interface for documents and their passages.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kiji/internal/models"
)

// ErrNotFound is returned when a document or passage does not exist.
var ErrNotFound = errors.New("not found")

// CorpusEntry is one passage of the corpus together with its source document.
type CorpusEntry struct {
	Passage       *models.Passage
	DocumentTitle string
	DocumentPath  string
}

// Storage defines document and passage persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// SaveDocument upserts doc and replaces all of its passages in one transaction.
	// A document keeps its corpus position when it is saved again.
	SaveDocument(ctx context.Context, doc *models.Document, passages []*models.Passage) error

	// Passage operations
	GetPassage(ctx context.Context, id string) (*models.Passage, error)
	GetPassagesByDocumentID(ctx context.Context, docID string) ([]*models.Passage, error)

	// ListCorpus returns every passage ordered by document insertion, then ordinal.
	ListCorpus(ctx context.Context) ([]CorpusEntry, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountPassages(ctx context.Context) (int64, error)

	Close() error
}
