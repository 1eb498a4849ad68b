package models

// Chunk is a bounded span of a document's text, the unit of embedding and retrieval.
// Chunks are immutable once created; reprocessing a document replaces them wholesale.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	// Index is the order of the chunk within its document, starting at 0.
	Index int    `json:"index"`
	Text  string `json:"text"`
	// Start and End are the character (rune) span [Start, End) into the
	// source text as passed to ingestion.
	Start int `json:"start"`
	End   int `json:"end"`
	// Keywords are optional extracted terms for the chunk.
	Keywords  []string  `json:"keywords,omitempty"`
	Embedding []float32 `json:"-"`
}

// Len returns the chunk's span length in characters.
func (c *Chunk) Len() int {
	return c.End - c.Start
}

// Overlap returns the number of overlapping characters between the spans of c and other.
// Zero when the chunks belong to different documents or the spans are disjoint.
func (c *Chunk) Overlap(other *Chunk) int {
	if c.DocumentID != other.DocumentID {
		return 0
	}
	start := c.Start
	if other.Start > start {
		start = other.Start
	}
	end := c.End
	if other.End < end {
		end = other.End
	}
	if end <= start {
		return 0
	}
	return end - start
}
