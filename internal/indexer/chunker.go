// Package indexer provides document chunking and the ingestion pipeline.
package indexer

import (
	"fmt"
	"iter"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/google/uuid"
)

// Chunker splits document text into overlapping character-based chunks.
// Sizes and spans count characters (runes), not bytes, so a cut never splits
// a multibyte code point. Chunk boundaries snap to the nearest sentence or
// whitespace boundary within a tolerance window back from the hard cut; a
// hard cut is used when no boundary is found. Each chunk overlaps its
// predecessor by exactly the configured overlap, taken from the end of the
// predecessor's span.
type Chunker struct {
	chunkSize int
	overlap   int
	tolerance int
}

// NewChunker creates a chunker. chunkSize and overlap are in characters and
// overlap must be smaller than chunkSize. tolerance bounds how far back from
// the hard cut a boundary may be; it is capped so every chunk still advances.
func NewChunker(chunkSize, overlap, tolerance int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("chunk size must be positive, got %d", chunkSize)}
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("overlap must be in [0, chunk size), got %d", overlap)}
	}
	if tolerance < 0 {
		tolerance = 0
	}
	// A snapped boundary must still leave the next start past the previous
	// one, otherwise chunking would not terminate.
	if limit := chunkSize - overlap - 1; tolerance > limit {
		tolerance = limit
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, tolerance: tolerance}, nil
}

// Chunks validates text and returns a restartable iterator over the chunk
// sequence. The sequence covers the whole text with no gaps; each chunk's
// first overlap characters repeat the end of its predecessor's span.
// Start and End are rune offsets into text. Empty text is a validation
// failure, not an empty sequence.
func (c *Chunker) Chunks(docID, text string) (iter.Seq[*models.Chunk], error) {
	if len(text) == 0 {
		return nil, &models.ValidationError{DocumentID: docID, Reason: "empty text"}
	}
	runes := []rune(text)
	return func(yield func(*models.Chunk) bool) {
		start := 0
		for index := 0; ; index++ {
			end := start + c.chunkSize
			last := false
			if end >= len(runes) {
				end = len(runes)
				last = true
			} else {
				end = c.snapBoundary(runes, end)
			}
			chunk := &models.Chunk{
				ID:         chunkID(docID, index),
				DocumentID: docID,
				Index:      index,
				Text:       string(runes[start:end]),
				Start:      start,
				End:        end,
			}
			if !yield(chunk) || last {
				return
			}
			start = end - c.overlap
		}
	}, nil
}

// ChunkAll materializes the full chunk sequence for text.
func (c *Chunker) ChunkAll(docID, text string) ([]*models.Chunk, error) {
	seq, err := c.Chunks(docID, text)
	if err != nil {
		return nil, err
	}
	var chunks []*models.Chunk
	for chunk := range seq {
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// snapBoundary returns the cut position for a chunk whose hard cut is at end.
// It prefers the closest sentence boundary within the tolerance window, then
// the closest whitespace, and falls back to the hard cut.
func (c *Chunker) snapBoundary(runes []rune, end int) int {
	lowest := end - c.tolerance
	if lowest < 1 {
		lowest = 1
	}
	whitespace := -1
	for i := end - 1; i >= lowest; i-- {
		if isSentenceEnd(runes, i) {
			return i + 1
		}
		if whitespace < 0 && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
			whitespace = i + 1
		}
	}
	if whitespace > 0 {
		return whitespace
	}
	return end
}

// isSentenceEnd reports whether position i ends a sentence: terminal
// punctuation followed by whitespace or end of text.
func isSentenceEnd(runes []rune, i int) bool {
	switch runes[i] {
	case '.', '!', '?':
	default:
		return false
	}
	if i+1 >= len(runes) {
		return true
	}
	next := runes[i+1]
	return next == ' ' || next == '\n' || next == '\t'
}

func chunkID(docID string, index int) string {
	return fmt.Sprintf("%s_%d_%s", docID, index, uuid.New().String()[:8])
}
