// Package vector provides an in-memory vector store with per-document atomic
// upserts and cosine-similarity search.
package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/pkg/utils"
)

// SearchHit is a single similarity search result. Chunk points at the stored
// record and must be treated as read-only.
type SearchHit struct {
	Chunk *models.Chunk
	// Score is the cosine similarity between the query and the stored
	// vector, in [-1, 1].
	Score float64
}

type storedEntry struct {
	chunk  *models.Chunk
	order  int64
	vector []float32
}

// Store holds chunk records and their embedding vectors grouped by document.
// A document's chunks are inserted and removed as one atomic set, so
// concurrent searches observe either the old or the new set, never a mix.
// Dimensionality is established at construction or by the first upsert and
// enforced for every vector after.
type Store struct {
	mu        sync.RWMutex
	dims      int
	docs      map[string][]*storedEntry
	nextOrder int64

	// versions counts mutations per document; entries are never deleted, so
	// a remove followed by a re-add cannot reuse an old value. globalVersion
	// counts all mutations.
	versions      map[string]uint64
	globalVersion uint64

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	listenerMu sync.RWMutex
	listeners  []func(docID string)
}

// New creates a store. dimensions may be zero, in which case the store adopts
// the dimensionality of the first inserted vector.
func New(dimensions int) (*Store, error) {
	if dimensions < 0 {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("dimensions must not be negative, got %d", dimensions)}
	}
	return &Store{
		dims:     dimensions,
		docs:     make(map[string][]*storedEntry),
		versions: make(map[string]uint64),
		inflight: make(map[string]struct{}),
	}, nil
}

// Dimensions returns the established dimensionality, or zero if no vector has
// been inserted yet.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// OnChange registers fn to be called synchronously whenever a document's
// chunks are upserted or removed. Used by the query cache to evict scoped
// entries before the mutating call returns.
func (s *Store) OnChange(fn func(docID string)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Acquire marks docID as having a writer in flight and returns a release
// function. A second Acquire for the same document before release fails with
// a ConflictError; writers for different documents proceed concurrently.
func (s *Store) Acquire(docID string) (func(), error) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[docID]; busy {
		return nil, &models.ConflictError{DocumentID: docID}
	}
	s.inflight[docID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.inflightMu.Lock()
			delete(s.inflight, docID)
			s.inflightMu.Unlock()
		})
	}, nil
}

// Upsert atomically replaces the chunk set for docID. The whole batch is
// rejected with a ValidationError, leaving the store untouched, if any
// chunk's embedding dimensionality disagrees with the store's. Chunks and
// vectors are copied; vectors are L2-normalized so stored inner products
// equal cosine similarity.
func (s *Store) Upsert(ctx context.Context, docID string, chunks []*models.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return &models.ValidationError{DocumentID: docID, Reason: "no chunks to insert"}
	}
	dims := s.Dimensions()
	if dims == 0 {
		dims = len(chunks[0].Embedding)
		if dims == 0 {
			return &models.ValidationError{DocumentID: docID, Reason: "empty embedding vector"}
		}
	}
	prepared := make([]*storedEntry, len(chunks))
	for i, ch := range chunks {
		if len(ch.Embedding) != dims {
			return &models.ValidationError{
				DocumentID: docID,
				Reason:     fmt.Sprintf("vector dimension mismatch: got %d, expected %d", len(ch.Embedding), dims),
			}
		}
		vec := make([]float32, dims)
		copy(vec, ch.Embedding)
		utils.NormalizeL2(vec)
		stored := *ch
		stored.DocumentID = docID
		stored.Embedding = nil
		prepared[i] = &storedEntry{chunk: &stored, vector: vec}
	}

	s.mu.Lock()
	// Re-check against the authoritative dimensionality; another writer may
	// have established it since the snapshot above.
	if s.dims != 0 && s.dims != dims {
		s.mu.Unlock()
		return &models.ValidationError{
			DocumentID: docID,
			Reason:     fmt.Sprintf("vector dimension mismatch: got %d, expected %d", dims, s.dims),
		}
	}
	s.dims = dims
	for _, e := range prepared {
		e.order = s.nextOrder
		s.nextOrder++
	}
	s.docs[docID] = prepared
	s.versions[docID]++
	s.globalVersion++
	s.mu.Unlock()

	s.notify(docID)
	return nil
}

// Remove atomically deletes all chunks for docID. Returns false when the
// document had no chunks; removing an unknown document is not an error.
func (s *Store) Remove(ctx context.Context, docID string) bool {
	if ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	_, found := s.docs[docID]
	delete(s.docs, docID)
	if found {
		s.versions[docID]++
		s.globalVersion++
	}
	s.mu.Unlock()

	if found {
		s.notify(docID)
	}
	return found
}

// Search returns up to k chunks ranked by descending cosine similarity to
// query. scope restricts the search to the given document IDs; nil means all.
// Scope IDs with no indexed chunks are ignored. Ties are broken by ascending
// chunk sequence index, then insertion order, so output is deterministic.
// Searching an empty store returns an empty slice.
func (s *Store) Search(ctx context.Context, query []float32, k int, scope []string) ([]*SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	q := make([]float32, len(query))
	copy(q, query)
	utils.NormalizeL2(q)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.docs) == 0 {
		return nil, nil
	}
	if len(q) != s.dims {
		return nil, &models.ValidationError{
			Reason: fmt.Sprintf("query dimension mismatch: got %d, expected %d", len(q), s.dims),
		}
	}

	type scored struct {
		hit   *SearchHit
		order int64
	}
	var candidates []scored
	collect := func(entries []*storedEntry) {
		for _, e := range entries {
			candidates = append(candidates, scored{
				hit:   &SearchHit{Chunk: e.chunk, Score: InnerProduct(q, e.vector)},
				order: e.order,
			})
		}
	}
	if scope == nil {
		for _, entries := range s.docs {
			collect(entries)
		}
	} else {
		for _, docID := range scope {
			if entries, ok := s.docs[docID]; ok {
				collect(entries)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.hit.Score != b.hit.Score {
			return a.hit.Score > b.hit.Score
		}
		if a.hit.Chunk.Index != b.hit.Chunk.Index {
			return a.hit.Chunk.Index < b.hit.Chunk.Index
		}
		return a.order < b.order
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	hits := make([]*SearchHit, k)
	for i := 0; i < k; i++ {
		hits[i] = candidates[i].hit
	}
	return hits, nil
}

// ScopeVersion returns a value that changes whenever any document covered by
// scope is upserted or removed. An empty scope covers every document. Callers
// snapshot the version before a search and compare it later to detect that a
// result has gone stale.
func (s *Store) ScopeVersion(scope []string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(scope) == 0 {
		return s.globalVersion
	}
	var v uint64
	for _, docID := range scope {
		v += s.versions[docID]
	}
	return v
}

// Count returns the number of chunks held for docID.
func (s *Store) Count(docID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[docID])
}

// Size returns the total number of chunks in the store.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entries := range s.docs {
		n += len(entries)
	}
	return n
}

// Documents returns the IDs of all documents with indexed chunks.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) notify(docID string) {
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	for _, fn := range s.listeners {
		fn(docID)
	}
}
