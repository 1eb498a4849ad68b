package models

// ScoredChunk is a retrieved chunk with its similarity score and final rank.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// RetrievalResult is the ordered context set produced for a query.
// It is never persisted by the core; the caller decides whether to record it.
type RetrievalResult struct {
	Query  string         `json:"query"`
	Chunks []*ScoredChunk `json:"chunks"`
	// CandidatesFound is the number of raw search hits before threshold
	// filtering and deduplication.
	CandidatesFound int   `json:"candidates_found"`
	QueryTimeMillis int64 `json:"query_time_ms"`
	// Cached reports whether the result was served from the query cache.
	Cached bool `json:"cached,omitempty"`
}

// ChunkIDs returns the identifiers of the retrieved chunks in rank order.
func (r *RetrievalResult) ChunkIDs() []string {
	ids := make([]string, len(r.Chunks))
	for i, sc := range r.Chunks {
		ids[i] = sc.Chunk.ID
	}
	return ids
}
