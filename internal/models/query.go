package models

import "fmt"

// QueryRequest is a retrieval request scoped to a set of documents.
type QueryRequest struct {
	Query string `json:"query"`
	// Scope restricts the search to these document IDs. Empty means all
	// indexed documents.
	Scope []string `json:"scope,omitempty"`
	TopK  int      `json:"top_k,omitempty"`
	// SimilarityThreshold is the minimum cosine similarity for a chunk to
	// be considered relevant.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	// OverlapFraction controls deduplication of overlapping chunks: when two
	// hits from the same document overlap by more than this fraction of the
	// shorter span, only the higher-scoring one is kept.
	OverlapFraction float64 `json:"overlap_fraction,omitempty"`
	// SessionID, when set, appends the query and its result to that
	// session's history.
	SessionID string `json:"session_id,omitempty"`
}

// Validate checks the request and fills defaults for unset fields.
// Returns an error if the query text is empty or parameters are out of range.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = 10
	}
	if q.TopK > 100 {
		q.TopK = 100
	}
	if q.SimilarityThreshold < -1 || q.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [-1, 1], got %v", q.SimilarityThreshold)
	}
	if q.OverlapFraction < 0 || q.OverlapFraction > 1 {
		return fmt.Errorf("overlap fraction must be in [0, 1], got %v", q.OverlapFraction)
	}
	if q.OverlapFraction == 0 {
		q.OverlapFraction = 0.5
	}
	return nil
}
