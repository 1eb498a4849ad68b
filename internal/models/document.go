// Package models defines core data structures for documents, chunks, and retrieval results.
package models

import "time"

// DocumentStatus is the host-visible processing status of a document.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the unit of ingestion. The host owns the document record and its
// persistence; the core only receives the identifier and the already-extracted text.
type Document struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Text      string         `json:"text"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
