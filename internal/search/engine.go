// Package search provides the similarity retrieval engine.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/debarghya18/localrag/internal/cache"
	"github.com/debarghya18/localrag/internal/embedding"
	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/internal/ranking"
	"github.com/debarghya18/localrag/internal/session"
	"github.com/debarghya18/localrag/internal/vector"
	"go.uber.org/zap"
)

// DefaultCandidateMultiplier controls how many raw hits are fetched per
// requested result. Deduplication and threshold filtering shrink the
// candidate set, so the store is over-queried to keep top-k full.
const DefaultCandidateMultiplier = 4

// Engine answers retrieval queries against the vector store.
type Engine struct {
	store               *vector.Store
	generator           *embedding.Generator
	ranker              *ranking.Ranker
	cache               *cache.QueryCache // nil disables caching
	sessions            *session.Manager  // nil disables session history
	logger              *zap.Logger       // optional
	candidateMultiplier int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache enables query result caching.
func WithCache(c *cache.QueryCache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithSessions enables session scoping and history recording.
func WithSessions(m *session.Manager) EngineOption {
	return func(e *Engine) { e.sessions = m }
}

// WithLogger sets a logger for query events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithCandidateMultiplier overrides how many raw hits are fetched per
// requested result. Non-positive values keep the default.
func WithCandidateMultiplier(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.candidateMultiplier = n
		}
	}
}

// NewEngine creates a retrieval engine over the given store and generator.
func NewEngine(store *vector.Store, generator *embedding.Generator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:               store,
		generator:           generator,
		ranker:              ranking.NewRanker(),
		candidateMultiplier: DefaultCandidateMultiplier,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache != nil {
		e.cache.BindEpochs(e.store.ScopeVersion)
	}
	return e
}

// Query embeds the query text, searches the store, and returns the ranked
// context set. Results are served from the cache when an equivalent query
// against the same scope was answered recently and no scoped document changed
// since. It returns models.ErrNoRelevantContext when candidates existed but
// none met the similarity threshold.
func (e *Engine) Query(ctx context.Context, req *models.QueryRequest) (*models.RetrievalResult, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	scope := req.Scope
	if req.SessionID != "" && len(scope) == 0 {
		if e.sessions == nil {
			return nil, fmt.Errorf("session %s: %w", req.SessionID, models.ErrNotFound)
		}
		var err error
		scope, err = e.sessions.Scope(req.SessionID)
		if err != nil {
			return nil, err
		}
	}

	key := cache.Key(req.Query, scope, req.TopK, req.SimilarityThreshold, req.OverlapFraction)
	if cached, ok := e.cache.Get(key); ok {
		result := *cached
		result.Cached = true
		result.QueryTimeMillis = time.Since(started).Milliseconds()
		e.record(req, &result, false, started)
		if e.logger != nil {
			e.logger.Debug("query served from cache", zap.String("query", req.Query))
		}
		return &result, nil
	}

	// Snapshot the scope version before embedding. If a scoped document is
	// reprocessed while this query is in flight, Put sees a newer version
	// and refuses to cache the stale result.
	epoch := e.store.ScopeVersion(scope)
	queryVec, err := e.generator.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := e.store.Search(ctx, queryVec, req.TopK*e.candidateMultiplier, scope)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.ScoredChunk, len(hits))
	for i, h := range hits {
		candidates[i] = &models.ScoredChunk{Chunk: h.Chunk, Score: h.Score}
	}
	ranked, err := e.ranker.Rank(candidates, ranking.Params{
		TopK:                req.TopK,
		SimilarityThreshold: req.SimilarityThreshold,
		OverlapFraction:     req.OverlapFraction,
	})
	if err != nil {
		if errors.Is(err, models.ErrNoRelevantContext) {
			e.record(req, &models.RetrievalResult{Query: req.Query}, true, started)
		}
		return nil, err
	}

	result := &models.RetrievalResult{
		Query:           req.Query,
		Chunks:          ranked,
		CandidatesFound: len(hits),
		QueryTimeMillis: time.Since(started).Milliseconds(),
	}
	e.cache.Put(key, scope, epoch, result)
	e.record(req, result, false, started)
	if e.logger != nil {
		e.logger.Debug("query answered",
			zap.String("query", req.Query),
			zap.Int("candidates", len(hits)),
			zap.Int("results", len(ranked)),
			zap.Int64("elapsed_ms", result.QueryTimeMillis))
	}
	return result, nil
}

// record appends the query outcome to session history, when a session is
// attached to the request.
func (e *Engine) record(req *models.QueryRequest, result *models.RetrievalResult, noContext bool, started time.Time) {
	if req.SessionID == "" || e.sessions == nil {
		return
	}
	err := e.sessions.AppendHistory(req.SessionID, session.QueryRecord{
		Query:            req.Query,
		ChunkIDs:         result.ChunkIDs(),
		NoRelevantResult: noContext,
		Timestamp:        started,
		ElapsedMillis:    time.Since(started).Milliseconds(),
	})
	if err != nil && e.logger != nil {
		e.logger.Warn("session history append failed", zap.String("session_id", req.SessionID), zap.Error(err))
	}
}

// Stats summarizes index contents for the status surface.
type Stats struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Dimensions int `json:"dimensions"`
}

// Stats returns index size counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Documents:  len(e.store.Documents()),
		Chunks:     e.store.Size(),
		Dimensions: e.store.Dimensions(),
	}
}

// ModelsStatus reports the embedding model's load state and compute device.
func (e *Engine) ModelsStatus() embedding.Status {
	return e.generator.Status()
}
