package embedding

import "testing"

func TestEmbeddingCache_MissThenHit(t *testing.T) {
	c := NewEmbeddingCache(4)
	if _, ok := c.Get("query text"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("query text", []float32{0.1, 0.2})
	v, ok := c.Get("query text")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(v) != 2 || v[1] != 0.2 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestEmbeddingCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // refresh a
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestEmbeddingCache_ZeroCapacity(t *testing.T) {
	c := NewEmbeddingCache(0)
	c.Set("x", []float32{1})
	if _, ok := c.Get("x"); !ok {
		t.Error("capacity is clamped to one entry")
	}
}
