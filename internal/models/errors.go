package models

import (
	"errors"
	"fmt"
)

// ErrNoRelevantContext is returned when every search hit falls below the
// similarity threshold. Distinct from an empty store, which yields an empty
// result without error.
var ErrNoRelevantContext = errors.New("no relevant context found")

// ErrNotFound is returned when an operation references a document with no
// indexed entries. Removal of an unknown document reports this rather than
// failing, since partial scopes are expected during concurrent ingestion.
var ErrNotFound = errors.New("document not found")

// ValidationError reports invalid input (empty text, bad chunk sizes,
// dimension mismatch). Never retried; surfaced immediately.
type ValidationError struct {
	DocumentID string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for document %s: %s", e.DocumentID, e.Reason)
}

// ModelUnavailableError reports that the embedding backend failed to load or
// to respond. Fatal at startup; retried with backoff at runtime up to a
// bounded attempt count.
type ModelUnavailableError struct {
	Model string
	Err   error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("embedding model %s unavailable: %v", e.Model, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// ConflictError reports that a document mutation was requested while another
// is already in flight for the same document. The caller decides whether to
// queue or drop.
type ConflictError struct {
	DocumentID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document %s is already being processed", e.DocumentID)
}
