package embedding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder produces embeddings through the OpenAI embeddings API.
// Useful when no local ONNX model is installed; the API is the "device",
// so acceleration is reported as unavailable.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	modelName  string
	dimensions int
	cache      *EmbeddingCache
}

// NewOpenAIEmbedder creates an API-backed embedder. apiKey must be non-empty;
// a missing key is an initialization failure, not a per-call error.
func NewOpenAIEmbedder(apiKey, modelName string, dimensions, cacheSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, &models.ModelUnavailableError{Model: modelName, Err: errors.New("OpenAI API key not set")}
	}
	if modelName == "" {
		modelName = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(modelName),
		modelName:  modelName,
		dimensions: dimensions,
		cache:      NewEmbeddingCache(cacheSize),
	}, nil
}

// Embed returns the normalized embedding for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one API request, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	request := make([]string, 0, len(texts))
	requestIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			out[i] = cached
			continue
		}
		// The API rejects empty input; a single space stands in so the
		// output stays aligned with the input sequence.
		if text == "" {
			text = " "
		}
		request = append(request, text)
		requestIdx = append(requestIdx, i)
	}
	if len(request) == 0 {
		return out, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: request,
		Model: e.model,
	})
	if err != nil {
		return nil, &models.ModelUnavailableError{Model: e.modelName, Err: err}
	}
	if len(resp.Data) != len(request) {
		return nil, &models.ModelUnavailableError{
			Model: e.modelName,
			Err:   fmt.Errorf("API returned %d embeddings for %d inputs", len(resp.Data), len(request)),
		}
	}
	data := make([]openai.Embedding, len(resp.Data))
	copy(data, resp.Data)
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	for i, d := range data {
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		out[requestIdx[i]] = vec
		e.cache.Set(texts[requestIdx[i]], vec)
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Device reports the remote API as the compute device.
func (e *OpenAIEmbedder) Device() DeviceInfo {
	return DeviceInfo{Name: "openai-api", Accelerated: false}
}

// Close is a no-op for the API-backed embedder.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
