// Package cache memoizes retrieval results keyed by query and document scope.
package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/pkg/utils"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// allDocuments is the scope bucket for unscoped queries, which must be
// invalidated whenever any document changes.
const allDocuments = "*"

// QueryCache memoizes ranked retrieval results. Entries expire after the
// configured TTL and are evicted eagerly when any document in their scope is
// reprocessed or removed. The cache is a pure optimization: disabling it
// changes latency, never results.
type QueryCache struct {
	lru *expirable.LRU[string, *models.RetrievalResult]

	mu sync.Mutex
	// byDoc maps a document ID to the cache keys whose scope includes it.
	byDoc map[string]map[string]struct{}
	// keyDocs is the reverse index, used to drop a key's scope mappings.
	keyDocs map[string][]string
	// epochs reports the current scope version of the backing index. When
	// set, Put rejects results whose scope changed since the caller's
	// snapshot, closing the window between a search and its insertion.
	epochs func(scope []string) uint64
}

// New creates a query cache holding up to maxEntries results for at most ttl.
func New(maxEntries int, ttl time.Duration) *QueryCache {
	return &QueryCache{
		lru:     expirable.NewLRU[string, *models.RetrievalResult](maxEntries, nil, ttl),
		byDoc:   make(map[string]map[string]struct{}),
		keyDocs: make(map[string][]string),
	}
}

// BindEpochs installs the scope version source consulted by Put. fn must be
// safe for concurrent use.
func (c *QueryCache) BindEpochs(fn func(scope []string) uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epochs = fn
}

// Key derives the cache key for a query against a document scope. The query
// text is normalized and the scope sorted, so equivalent requests share an
// entry regardless of spelling or scope order.
func Key(query string, scope []string, topK int, threshold, overlapFraction float64) string {
	sorted := make([]string, len(scope))
	copy(sorted, scope)
	sort.Strings(sorted)
	var b strings.Builder
	b.WriteString(utils.NormalizeText(query))
	b.WriteByte('|')
	b.WriteString(strings.Join(sorted, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(topK))
	b.WriteByte('|')
	b.WriteString(fmt.Sprintf("%.6f", threshold))
	b.WriteByte('|')
	b.WriteString(fmt.Sprintf("%.6f", overlapFraction))
	return b.String()
}

// Get returns the cached result for key, if present and unexpired.
func (c *QueryCache) Get(key string) (*models.RetrievalResult, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Put stores result under key, indexing it by every document in scope.
// An empty scope means the query ran against all documents; such entries are
// evicted on any document change. epoch is the scope version observed before
// the search that produced result; the entry is dropped when the scope has
// advanced since, so a result computed over stale index contents is never
// cached after the invalidation for the change already ran.
func (c *QueryCache) Put(key string, scope []string, epoch uint64, result *models.RetrievalResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epochs != nil && c.epochs(scope) != epoch {
		return
	}
	c.lru.Add(key, result)
	var docs []string
	if len(scope) == 0 {
		docs = []string{allDocuments}
	} else {
		docs = make([]string, len(scope))
		copy(docs, scope)
	}
	if _, indexed := c.keyDocs[key]; !indexed {
		c.keyDocs[key] = docs
		for _, docID := range docs {
			bucket, ok := c.byDoc[docID]
			if !ok {
				bucket = make(map[string]struct{})
				c.byDoc[docID] = bucket
			}
			bucket[key] = struct{}{}
		}
	}
	c.compactLocked()
}

// InvalidateDocument evicts every cached result whose scope includes docID,
// including unscoped results. Called synchronously from the vector store's
// change notification, so a subsequent identical query cannot observe a
// stale result.
func (c *QueryCache) InvalidateDocument(docID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateBucketLocked(docID)
	c.invalidateBucketLocked(allDocuments)
}

func (c *QueryCache) invalidateBucketLocked(docID string) {
	bucket, ok := c.byDoc[docID]
	if !ok {
		return
	}
	for key := range bucket {
		c.lru.Remove(key)
		c.dropKeyLocked(key)
	}
	delete(c.byDoc, docID)
}

func (c *QueryCache) dropKeyLocked(key string) {
	for _, docID := range c.keyDocs[key] {
		if bucket, ok := c.byDoc[docID]; ok {
			delete(bucket, key)
			if len(bucket) == 0 {
				delete(c.byDoc, docID)
			}
		}
	}
	delete(c.keyDocs, key)
}

// compactLocked prunes index entries for keys the LRU has already dropped by
// capacity or TTL. Runs only when the index has grown well past the LRU.
func (c *QueryCache) compactLocked() {
	if len(c.keyDocs) <= 2*c.lru.Len()+16 {
		return
	}
	live := make(map[string]struct{}, c.lru.Len())
	for _, key := range c.lru.Keys() {
		live[key] = struct{}{}
	}
	for key := range c.keyDocs {
		if _, ok := live[key]; !ok {
			c.dropKeyLocked(key)
		}
	}
}

// Purge drops all entries.
func (c *QueryCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.byDoc = make(map[string]map[string]struct{})
	c.keyDocs = make(map[string][]string)
}

// Len returns the number of live cached results.
func (c *QueryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
