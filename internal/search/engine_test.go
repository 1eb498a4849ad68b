package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/debarghya18/localrag/internal/cache"
	"github.com/debarghya18/localrag/internal/embedding"
	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/internal/session"
	"github.com/debarghya18/localrag/internal/vector"
)

const testDims = 32

func newTestStore(t *testing.T, docs map[string][]string) (*vector.Store, *embedding.Generator) {
	t.Helper()
	gen := embedding.NewGenerator(embedding.NewMockEmbedder(testDims), "test-model", 0, 2)
	store, err := vector.New(testDims)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for docID, texts := range docs {
		chunks := make([]*models.Chunk, len(texts))
		pos := 0
		for i, text := range texts {
			vec, err := gen.Embed(ctx, text)
			if err != nil {
				t.Fatal(err)
			}
			chunks[i] = &models.Chunk{
				ID:         fmt.Sprintf("%s_c%d", docID, i),
				DocumentID: docID,
				Index:      i,
				Text:       text,
				Start:      pos,
				End:        pos + len(text),
				Embedding:  vec,
			}
			pos += len(text)
		}
		if err := store.Upsert(ctx, docID, chunks); err != nil {
			t.Fatal(err)
		}
	}
	return store, gen
}

func TestEngineQueryFindsExactChunk(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"retrieval augmented generation", "vector similarity search"},
		"doc2": {"unrelated cooking recipe"},
	})
	e := NewEngine(store, gen)

	got, err := e.Query(context.Background(), &models.QueryRequest{
		Query:               "vector similarity search",
		SimilarityThreshold: 0.999,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %+v", len(got.Chunks), got.Chunks)
	}
	top := got.Chunks[0]
	if top.Chunk.ID != "doc1_c1" {
		t.Errorf("top chunk = %s, want doc1_c1", top.Chunk.ID)
	}
	if top.Score < 0.999 {
		t.Errorf("identical text score = %v", top.Score)
	}
	if top.Rank != 1 {
		t.Errorf("rank = %d, want 1", top.Rank)
	}
	if got.Cached {
		t.Error("first query must not be cached")
	}
}

func TestEngineQueryDeterministic(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"alpha text", "beta text", "gamma text"},
		"doc2": {"delta text", "epsilon text"},
	})
	e := NewEngine(store, gen)

	req := func() *models.QueryRequest {
		return &models.QueryRequest{Query: "beta text", SimilarityThreshold: -1, TopK: 5}
	}
	first, err := e.Query(context.Background(), req())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := e.Query(context.Background(), req())
		if err != nil {
			t.Fatal(err)
		}
		a, b := first.ChunkIDs(), again.ChunkIDs()
		if len(a) != len(b) {
			t.Fatalf("result size changed: %v vs %v", a, b)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("non-deterministic order: %v vs %v", a, b)
			}
		}
	}
}

func TestEngineNoRelevantContext(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"some indexed content"},
	})
	e := NewEngine(store, gen)

	_, err := e.Query(context.Background(), &models.QueryRequest{
		Query:               "totally different text",
		SimilarityThreshold: 0.999,
	})
	if !errors.Is(err, models.ErrNoRelevantContext) {
		t.Fatalf("got %v, want ErrNoRelevantContext", err)
	}
}

func TestEngineEmptyStoreNoError(t *testing.T) {
	store, _ := vector.New(testDims)
	gen := embedding.NewGenerator(embedding.NewMockEmbedder(testDims), "test-model", 0, 2)
	e := NewEngine(store, gen)

	got, err := e.Query(context.Background(), &models.QueryRequest{Query: "anything"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got.Chunks) != 0 || got.CandidatesFound != 0 {
		t.Errorf("empty store result: %+v", got)
	}
}

func TestEngineValidatesRequest(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{"doc1": {"text"}})
	e := NewEngine(store, gen)
	if _, err := e.Query(context.Background(), &models.QueryRequest{Query: ""}); err == nil {
		t.Fatal("empty query should be rejected")
	}
	if _, err := e.Query(context.Background(), &models.QueryRequest{Query: "q", SimilarityThreshold: 2}); err == nil {
		t.Fatal("out-of-range threshold should be rejected")
	}
}

func TestEngineScopeRestriction(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"shared phrasing one"},
		"doc2": {"shared phrasing two"},
	})
	e := NewEngine(store, gen)

	got, err := e.Query(context.Background(), &models.QueryRequest{
		Query:               "shared phrasing one",
		Scope:               []string{"doc2"},
		SimilarityThreshold: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range got.Chunks {
		if sc.Chunk.DocumentID != "doc2" {
			t.Errorf("scoped query returned chunk from %s", sc.Chunk.DocumentID)
		}
	}
}

func TestEngineCacheHitAndInvalidation(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"cached content here"},
	})
	qc := cache.New(100, time.Minute)
	store.OnChange(qc.InvalidateDocument)
	e := NewEngine(store, gen, WithCache(qc))

	req := func() *models.QueryRequest {
		return &models.QueryRequest{Query: "cached content here", Scope: []string{"doc1"}, SimilarityThreshold: -1}
	}
	first, err := e.Query(context.Background(), req())
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first query must miss the cache")
	}
	second, err := e.Query(context.Background(), req())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second identical query should hit the cache")
	}

	// Reprocessing the scoped document must evict the entry before Upsert
	// returns, so the next query sees fresh data.
	ctx := context.Background()
	vec, _ := gen.Embed(ctx, "replacement content")
	err = store.Upsert(ctx, "doc1", []*models.Chunk{{
		ID: "doc1_new", DocumentID: "doc1", Index: 0,
		Text: "replacement content", End: len("replacement content"),
		Embedding: vec,
	}})
	if err != nil {
		t.Fatal(err)
	}
	third, err := e.Query(context.Background(), req())
	if err != nil && !errors.Is(err, models.ErrNoRelevantContext) {
		t.Fatal(err)
	}
	if third != nil && third.Cached {
		t.Error("query after reprocess must not be served stale")
	}
}

func TestEngineSessionScopeAndHistory(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"session scoped text"},
		"doc2": {"out of session text"},
	})
	sessions := session.NewManager()
	s := sessions.Create("notes", []string{"doc1"})
	e := NewEngine(store, gen, WithSessions(sessions))

	got, err := e.Query(context.Background(), &models.QueryRequest{
		Query:               "session scoped text",
		SessionID:           s.ID,
		SimilarityThreshold: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range got.Chunks {
		if sc.Chunk.DocumentID != "doc1" {
			t.Errorf("session scope leaked: got chunk from %s", sc.Chunk.DocumentID)
		}
	}
	stored, err := sessions.Get(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(stored.History))
	}
	if stored.History[0].Query != "session scoped text" {
		t.Errorf("history query = %q", stored.History[0].Query)
	}

	if _, err := e.Query(context.Background(), &models.QueryRequest{Query: "q", SessionID: "missing"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown session: got %v, want ErrNotFound", err)
	}
}

func TestEngineStatsAndModelsStatus(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"a", "b"},
		"doc2": {"c"},
	})
	e := NewEngine(store, gen)

	stats := e.Stats()
	if stats.Documents != 2 || stats.Chunks != 3 || stats.Dimensions != testDims {
		t.Errorf("stats = %+v", stats)
	}
	status := e.ModelsStatus()
	if !status.Loaded || status.ModelName != "test-model" || status.Dimensions != testDims {
		t.Errorf("models status = %+v", status)
	}
	if status.Device != "mock" {
		t.Errorf("device = %q", status.Device)
	}
}

// gatedEmbedder pauses single-text embedding until released, so a test can
// mutate the store while a query is between its cache miss and its result.
type gatedEmbedder struct {
	*embedding.MockEmbedder
	entered chan struct{}
	release chan struct{}
}

func (g *gatedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.MockEmbedder.Embed(ctx, text)
}

func TestEngineDoesNotCacheResultStaleAfterReprocess(t *testing.T) {
	store, gen := newTestStore(t, map[string][]string{
		"doc1": {"original content"},
	})
	gated := &gatedEmbedder{
		MockEmbedder: embedding.NewMockEmbedder(testDims),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	queryGen := embedding.NewGenerator(gated, "test-model", 0, 2)
	qc := cache.New(100, time.Minute)
	store.OnChange(qc.InvalidateDocument)
	e := NewEngine(store, queryGen, WithCache(qc))

	req := &models.QueryRequest{Query: "original content", Scope: []string{"doc1"}, SimilarityThreshold: -1}
	done := make(chan error, 1)
	go func() {
		_, err := e.Query(context.Background(), req)
		done <- err
	}()
	<-gated.entered

	// doc1 is reprocessed while the first query is still embedding. The
	// eviction for this change runs now; the in-flight result is older.
	ctx := context.Background()
	vec, err := gen.Embed(ctx, "replacement content")
	if err != nil {
		t.Fatal(err)
	}
	err = store.Upsert(ctx, "doc1", []*models.Chunk{{
		ID: "doc1_new", DocumentID: "doc1", Index: 0,
		Text: "replacement content", End: len("replacement content"),
		Embedding: vec,
	}})
	if err != nil {
		t.Fatal(err)
	}
	close(gated.release)
	if err := <-done; err != nil && !errors.Is(err, models.ErrNoRelevantContext) {
		t.Fatal(err)
	}
	if qc.Len() != 0 {
		t.Fatalf("cache holds %d entries computed over pre-reprocess contents", qc.Len())
	}

	// An identical query now finds the replacement, not the old result.
	go func() { <-gated.entered }()
	second, err := e.Query(context.Background(), req)
	if err != nil && !errors.Is(err, models.ErrNoRelevantContext) {
		t.Fatal(err)
	}
	if second != nil && second.Cached {
		t.Error("query after reprocess must not be served from cache")
	}
	if second != nil {
		for _, sc := range second.Chunks {
			if sc.Chunk.Text == "original content" {
				t.Error("query returned a chunk from before the reprocess")
			}
		}
	}
}
