package ranking

import (
	"errors"
	"testing"

	"github.com/debarghya18/localrag/internal/models"
)

func scored(docID string, start, end int, score float64) *models.ScoredChunk {
	return &models.ScoredChunk{
		Chunk: &models.Chunk{
			ID:         docID + "_c",
			DocumentID: docID,
			Start:      start,
			End:        end,
		},
		Score: score,
	}
}

func TestRank_ThresholdFilter(t *testing.T) {
	r := NewRanker()
	candidates := []*models.ScoredChunk{
		scored("d1", 0, 100, 0.9),
		scored("d1", 500, 600, 0.6),
		scored("d2", 0, 100, 0.3),
	}
	got, err := r.Rank(candidates, Params{TopK: 10, SimilarityThreshold: 0.5, OverlapFraction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	for _, c := range got {
		if c.Score < 0.5 {
			t.Errorf("result below threshold: %v", c.Score)
		}
	}
}

func TestRank_NoRelevantContext(t *testing.T) {
	r := NewRanker()
	candidates := []*models.ScoredChunk{
		scored("d1", 0, 100, 0.5),
		scored("d1", 100, 200, 0.4),
	}
	_, err := r.Rank(candidates, Params{TopK: 10, SimilarityThreshold: 0.9, OverlapFraction: 0.5})
	if !errors.Is(err, models.ErrNoRelevantContext) {
		t.Fatalf("expected ErrNoRelevantContext, got %v", err)
	}
}

func TestRank_EmptyCandidatesIsNotAnError(t *testing.T) {
	r := NewRanker()
	got, err := r.Rank(nil, Params{TopK: 10, SimilarityThreshold: 0.9})
	if err != nil {
		t.Fatalf("empty candidates should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestRank_DeduplicatesOverlappingSpans(t *testing.T) {
	r := NewRanker()
	// Spans [0,1000) and [800,1800) overlap by 200 of 1000 (20%); spans
	// [800,1800) and [1000,1900) overlap by 800 of 900 (89%).
	candidates := []*models.ScoredChunk{
		scored("d1", 800, 1800, 0.95),
		scored("d1", 1000, 1900, 0.90),
		scored("d1", 0, 1000, 0.85),
	}
	got, err := r.Rank(candidates, Params{TopK: 10, SimilarityThreshold: 0, OverlapFraction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 after dedup, got %d", len(got))
	}
	if got[0].Chunk.Start != 800 || got[1].Chunk.Start != 0 {
		t.Errorf("kept wrong chunks: spans start at %d, %d", got[0].Chunk.Start, got[1].Chunk.Start)
	}
	if got[0].Score != 0.95 {
		t.Errorf("should keep the higher-scoring duplicate, kept %v", got[0].Score)
	}
}

func TestRank_NoDedupAcrossDocuments(t *testing.T) {
	r := NewRanker()
	candidates := []*models.ScoredChunk{
		scored("d1", 0, 1000, 0.9),
		scored("d2", 0, 1000, 0.8),
	}
	got, err := r.Rank(candidates, Params{TopK: 10, SimilarityThreshold: 0, OverlapFraction: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("same spans in different documents must both survive, got %d", len(got))
	}
}

func TestRank_TopKTruncationAndRanks(t *testing.T) {
	r := NewRanker()
	candidates := []*models.ScoredChunk{
		scored("d1", 0, 100, 0.9),
		scored("d2", 0, 100, 0.8),
		scored("d1", 5000, 5100, 0.7),
		scored("d2", 5000, 5100, 0.6),
	}
	got, err := r.Rank(candidates, Params{TopK: 2, SimilarityThreshold: 0, OverlapFraction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Rank != 1 || got[1].Rank != 2 {
		t.Errorf("ranks = %d, %d", got[0].Rank, got[1].Rank)
	}
	if got[0].Score != 0.9 || got[1].Score != 0.8 {
		t.Errorf("scores = %v, %v", got[0].Score, got[1].Score)
	}
}

func TestRank_OverlapFractionBoundary(t *testing.T) {
	r := NewRanker()
	// Overlap is exactly half the shorter span: not "more than", so kept.
	candidates := []*models.ScoredChunk{
		scored("d1", 0, 100, 0.9),
		scored("d1", 50, 150, 0.8),
	}
	got, err := r.Rank(candidates, Params{TopK: 10, SimilarityThreshold: 0, OverlapFraction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("overlap equal to the fraction must not dedup, got %d results", len(got))
	}
}
