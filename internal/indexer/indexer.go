package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/debarghya18/localrag/internal/embedding"
	"github.com/debarghya18/localrag/internal/keyword"
	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/internal/vector"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts bounds embedding retries per document.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay seeds the exponential backoff between attempts.
	DefaultBaseDelay = 500 * time.Millisecond
	// KeywordsPerChunk caps the keyword terms attached to each chunk.
	KeywordsPerChunk = 8
)

// Pipeline runs the document ingestion state machine: chunk, embed, index.
// A document moves pending -> chunking -> embedding -> indexed, or to failed
// from any stage. The vector store is only touched once the full embedding
// set exists, so a failure or cancellation mid-flight leaves the previously
// indexed version (if any) visible and intact.
type Pipeline struct {
	chunker      *Chunker
	keywords     *keyword.Extractor
	generator    *embedding.Generator
	store        *vector.Store
	maxAttempts  int
	baseDelay    time.Duration
	keywordLimit int
	logger       *zap.Logger // optional; when set, logs stage transitions
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for stage transition events.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithRetry overrides the embedding retry policy. Non-positive values keep
// the defaults.
func WithRetry(maxAttempts int, baseDelay time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			p.baseDelay = baseDelay
		}
	}
}

// WithKeywordLimit overrides how many keyword terms are attached to each
// chunk. Non-positive values keep the default.
func WithKeywordLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		if limit > 0 {
			p.keywordLimit = limit
		}
	}
}

// ProcessOption adjusts a single ingestion run.
type ProcessOption func(*processSettings)

type processSettings struct {
	chunker *Chunker
	err     error
}

// WithChunking overrides chunk size, overlap, and boundary tolerance for one
// run, leaving the pipeline's configured chunker untouched. Invalid sizes
// fail the Process call with a ValidationError.
func WithChunking(chunkSize, overlap, tolerance int) ProcessOption {
	return func(s *processSettings) {
		s.chunker, s.err = NewChunker(chunkSize, overlap, tolerance)
	}
}

// NewPipeline creates a pipeline with the given dependencies.
// keywords may be nil; chunks are then indexed without keyword terms.
func NewPipeline(
	chunker *Chunker,
	keywords *keyword.Extractor,
	generator *embedding.Generator,
	store *vector.Store,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		chunker:      chunker,
		keywords:     keywords,
		generator:    generator,
		store:        store,
		maxAttempts:  DefaultMaxAttempts,
		baseDelay:    DefaultBaseDelay,
		keywordLimit: KeywordsPerChunk,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process ingests (or reprocesses) a document. It returns a status channel
// that reports each stage transition and closes after a terminal stage
// (indexed or failed) is delivered. Text is chunked exactly as given; chunk
// spans index the supplied string, so callers that normalize first get spans
// into their normalized form.
//
// Only one in-flight run per document is allowed; a second concurrent call
// for the same ID fails immediately with a ConflictError. Reprocessing an
// already indexed document follows the same path: queries keep seeing the old
// chunk set until the new one is swapped in atomically.
func (p *Pipeline) Process(ctx context.Context, docID, text string, opts ...ProcessOption) (<-chan models.StatusUpdate, error) {
	if docID == "" {
		return nil, &models.ValidationError{Reason: "document ID is empty"}
	}
	settings := processSettings{chunker: p.chunker}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.err != nil {
		return nil, settings.err
	}
	release, err := p.store.Acquire(docID)
	if err != nil {
		return nil, err
	}

	updates := make(chan models.StatusUpdate, 8)
	go func() {
		defer close(updates)
		defer release()
		p.run(ctx, docID, text, settings.chunker, updates)
	}()
	return updates, nil
}

// ProcessSync runs Process and blocks until the terminal stage, returning the
// failure (if any) as an error.
func (p *Pipeline) ProcessSync(ctx context.Context, docID, text string, opts ...ProcessOption) error {
	updates, err := p.Process(ctx, docID, text, opts...)
	if err != nil {
		return err
	}
	var last models.StatusUpdate
	for update := range updates {
		last = update
	}
	if last.Stage == models.StageFailed {
		return errors.New(last.Error)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, docID, text string, chunker *Chunker, updates chan<- models.StatusUpdate) {
	emit := func(u models.StatusUpdate) {
		u.DocumentID = docID
		if p.logger != nil {
			p.logger.Debug("ingest stage",
				zap.String("document_id", docID),
				zap.String("stage", string(u.Stage)),
				zap.Int("chunks_total", u.ChunksTotal),
				zap.Int("chunks_embedded", u.ChunksEmbedded))
		}
		updates <- u
	}
	fail := func(total int, err error) {
		if p.logger != nil {
			p.logger.Warn("ingest failed", zap.String("document_id", docID), zap.Error(err))
		}
		emit(models.StatusUpdate{Stage: models.StageFailed, ChunksTotal: total, Error: err.Error()})
	}

	emit(models.StatusUpdate{Stage: models.StagePending})

	emit(models.StatusUpdate{Stage: models.StageChunking})
	chunks, err := chunker.ChunkAll(docID, text)
	if err != nil {
		fail(0, err)
		return
	}
	if p.keywords != nil {
		for _, ch := range chunks {
			ch.Keywords = p.keywords.Extract(ch.Text, p.keywordLimit)
		}
	}

	emit(models.StatusUpdate{Stage: models.StageEmbedding, ChunksTotal: len(chunks)})
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedWithRetry(ctx, texts)
	if err != nil {
		fail(len(chunks), err)
		return
	}

	for i, ch := range chunks {
		ch.Embedding = vectors[i]
	}
	if err := p.store.Upsert(ctx, docID, chunks); err != nil {
		fail(len(chunks), err)
		return
	}
	if p.logger != nil {
		p.logger.Info("document indexed",
			zap.String("document_id", docID),
			zap.Int("chunks", len(chunks)))
	}
	emit(models.StatusUpdate{
		Stage:          models.StageIndexed,
		ChunksTotal:    len(chunks),
		ChunksEmbedded: len(chunks),
	})
}

// embedWithRetry calls the generator under exponential backoff. Only model
// availability errors are retried; validation and cancellation are final.
func (p *Pipeline) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	backoff := retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewExponential(p.baseDelay))
	var vectors [][]float32
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = p.generator.EmbedBatch(ctx, texts)
		if embedErr != nil {
			var unavailable *models.ModelUnavailableError
			if errors.As(embedErr, &unavailable) {
				return retry.RetryableError(embedErr)
			}
			return embedErr
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding failed after %d attempts: %w", p.maxAttempts, err)
	}
	return vectors, nil
}

// Remove deletes a document's chunks from the index. It conflicts with an
// in-flight Process run for the same document and returns ErrNotFound when
// the document was never indexed.
func (p *Pipeline) Remove(ctx context.Context, docID string) error {
	if docID == "" {
		return &models.ValidationError{Reason: "document ID is empty"}
	}
	release, err := p.store.Acquire(docID)
	if err != nil {
		return err
	}
	defer release()

	if !p.store.Remove(ctx, docID) {
		return fmt.Errorf("document %s: %w", docID, models.ErrNotFound)
	}
	if p.logger != nil {
		p.logger.Info("document removed", zap.String("document_id", docID))
	}
	return nil
}
