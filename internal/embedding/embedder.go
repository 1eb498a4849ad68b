// Package embedding provides text embedding backends, batching, and caching.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must return
// one vector per input in input order; an empty string still yields a vector
// (the model's representation of empty input) so index alignment is
// preserved.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Device() DeviceInfo
	Close() error
}

// DeviceInfo describes the compute device a backend selected at startup.
type DeviceInfo struct {
	Name        string `json:"name"`
	Accelerated bool   `json:"accelerated"`
}

// Status is the model status surface exposed for host health checks.
type Status struct {
	Loaded      bool   `json:"loaded"`
	Device      string `json:"device"`
	Accelerated bool   `json:"accelerated"`
	ModelName   string `json:"embedding_model_name"`
	Dimensions  int    `json:"dimensions"`
}
