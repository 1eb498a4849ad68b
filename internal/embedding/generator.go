package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize bounds how many texts go to the backend per call.
	DefaultBatchSize = 1000
	// DefaultWorkers bounds concurrent backend calls per EmbedBatch.
	DefaultWorkers = 4
)

// Generator wraps a backend with internal batching and a bounded worker pool.
// Batching is purely a performance detail: output is one vector per input in
// input order regardless of batch size or worker count.
type Generator struct {
	backend   Embedder
	modelName string
	batchSize int
	workers   int
}

// NewGenerator creates a generator over backend. batchSize and workers fall
// back to defaults when non-positive.
func NewGenerator(backend Embedder, modelName string, batchSize, workers int) *Generator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Generator{
		backend:   backend,
		modelName: modelName,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Embed returns the embedding for a single text.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.backend.Embed(ctx, text)
}

// EmbedBatch embeds texts in internal batches executed by up to the
// configured number of workers. The first backend error cancels remaining
// batches and is returned.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		grp.Go(func() error {
			vecs, err := g.backend.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("backend returned %d vectors for %d texts", len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the backend's embedding dimension.
func (g *Generator) Dimensions() int {
	return g.backend.Dimensions()
}

// Device returns the backend's selected compute device.
func (g *Generator) Device() DeviceInfo {
	return g.backend.Device()
}

// Status reports the model status for host health checks.
func (g *Generator) Status() Status {
	device := g.backend.Device()
	return Status{
		Loaded:      true,
		Device:      device.Name,
		Accelerated: device.Accelerated,
		ModelName:   g.modelName,
		Dimensions:  g.backend.Dimensions(),
	}
}

// Close releases the backend's resources.
func (g *Generator) Close() error {
	return g.backend.Close()
}
