package embedding

import (
	"fmt"
	"os"
)

// BackendType selects the embedding backend.
type BackendType string

const (
	// BackendONNX runs a local ONNX model. Requires cgo and the onnxruntime
	// shared library.
	BackendONNX BackendType = "onnx"
	// BackendOpenAI embeds through the OpenAI API. Requires OPENAI_API_KEY.
	BackendOpenAI BackendType = "openai"
	// BackendMock produces deterministic hash-derived vectors. Tests only.
	BackendMock BackendType = "mock"
)

// Options configure backend construction.
type Options struct {
	Backend    string
	ModelPath  string
	ModelName  string
	Dimensions int
	MaxTokens  int
	CacheSize  int
}

// NewBackend creates an embedder of the configured type.
// Supported backends: "onnx" (default), "openai", "mock".
func NewBackend(opts Options) (Embedder, error) {
	switch BackendType(opts.Backend) {
	case BackendONNX, "":
		return NewONNXEmbedder(opts.ModelPath, opts.ModelName, opts.Dimensions, opts.MaxTokens, opts.CacheSize)
	case BackendOpenAI:
		return NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), opts.ModelName, opts.Dimensions, opts.CacheSize)
	case BackendMock:
		return NewMockEmbedder(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: onnx, openai, mock)", opts.Backend)
	}
}
