// Package ranking turns raw similarity search hits into a filtered, ordered,
// deduplicated context set.
package ranking

import (
	"github.com/debarghya18/localrag/internal/models"
)

// Params is the per-query ranking configuration.
type Params struct {
	// TopK is the maximum number of results returned.
	TopK int
	// SimilarityThreshold is the minimum acceptable score; hits below it are
	// dropped before deduplication.
	SimilarityThreshold float64
	// OverlapFraction controls dedup sensitivity: two hits from the same
	// document whose spans overlap by more than this fraction of the shorter
	// span are considered duplicates, keeping the higher-scoring one.
	OverlapFraction float64
}

// Ranker filters, deduplicates, and truncates search results.
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank applies the threshold filter, overlap deduplication, and top-k
// truncation to candidates, which must already be ordered by descending
// score. It returns models.ErrNoRelevantContext when candidates were present
// but every one fell below the threshold, so callers can distinguish "nothing
// relevant" from "nothing at all". An empty candidate list yields an empty
// result without error.
func (r *Ranker) Rank(candidates []*models.ScoredChunk, p Params) ([]*models.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	filtered := make([]*models.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= p.SimilarityThreshold {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil, models.ErrNoRelevantContext
	}

	// Candidates arrive ordered by descending score, so a later hit that
	// overlaps an already-kept one is always the lower-scoring duplicate.
	kept := make([]*models.ScoredChunk, 0, len(filtered))
	for _, c := range filtered {
		if isDuplicate(c, kept, p.OverlapFraction) {
			continue
		}
		kept = append(kept, c)
	}

	if p.TopK > 0 && len(kept) > p.TopK {
		kept = kept[:p.TopK]
	}
	for i, c := range kept {
		c.Rank = i + 1
	}
	return kept, nil
}

// isDuplicate reports whether c's span overlaps a kept chunk from the same
// document by more than overlapFraction of the shorter span.
func isDuplicate(c *models.ScoredChunk, kept []*models.ScoredChunk, overlapFraction float64) bool {
	for _, k := range kept {
		overlap := c.Chunk.Overlap(k.Chunk)
		if overlap == 0 {
			continue
		}
		shorter := c.Chunk.Len()
		if l := k.Chunk.Len(); l < shorter {
			shorter = l
		}
		if shorter == 0 {
			continue
		}
		if float64(overlap)/float64(shorter) > overlapFraction {
			return true
		}
	}
	return false
}
