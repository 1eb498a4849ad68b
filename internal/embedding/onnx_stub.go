//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"

	"github.com/debarghya18/localrag/internal/models"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real
// implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_, modelName string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, &models.ModelUnavailableError{
		Model: modelName,
		Err:   errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime"),
	}
}

func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("ONNX embedder not available")
}

func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("ONNX embedder not available")
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Device() DeviceInfo { return DeviceInfo{Name: "none"} }

func (e *ONNXEmbedder) Close() error { return nil }
