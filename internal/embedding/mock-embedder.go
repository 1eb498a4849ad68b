package embedding

import (
	"context"
	"math"

	"github.com/debarghya18/localrag/pkg/utils"
)

// MockEmbedder produces deterministic unit vectors derived from the text
// hash: the same text always embeds to the same vector and distinct texts
// land apart. No model files needed; used in tests and, when configured
// explicitly, to run without the native runtime.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock backend with the given dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the deterministic unit vector for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	seed := HashString(text)
	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed*(i+1)))*0.1 + 0.01)
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Device reports the synthetic backend.
func (e *MockEmbedder) Device() DeviceInfo {
	return DeviceInfo{Name: "mock", Accelerated: false}
}

func (e *MockEmbedder) Close() error {
	return nil
}
