package embedding

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// EmbeddingCache memoizes vectors by input text so repeated ingests and
// queries skip the model. Safe for concurrent use.
type EmbeddingCache struct {
	lru *lru.Cache[string, []float32]
}

// NewEmbeddingCache creates a cache holding at most capacity entries.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	c, _ := lru.New[string, []float32](capacity)
	return &EmbeddingCache{lru: c}
}

// Get returns the cached vector for text, if present.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	return c.lru.Get(text)
}

// Set stores the vector for text, evicting the least recently used entry
// when full.
func (c *EmbeddingCache) Set(text string, vector []float32) {
	c.lru.Add(text, vector)
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	return c.lru.Len()
}
