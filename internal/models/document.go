// Package models defines core data structures for documents, passages, queries, and search results.
package models

import "time"

// Document represents a stored source document with metadata.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	Title     string                 `json:"title" db:"title"`
	Path      string                 `json:"path,omitempty" db:"path"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// Passage is one searchable unit of text cut from a document.
type Passage struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Ordinal    int       `json:"ordinal" db:"ordinal"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	// SplitMode overrides the configured passage split mode for this document.
	SplitMode string `json:"split_mode,omitempty"`
}

// DocumentLink is a document whose title matched a query.
type DocumentLink struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Path  string  `json:"path,omitempty"`
	Score float64 `json:"score"`
}
