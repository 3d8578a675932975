package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const maxBatchSize = 64

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client      openai.Client
	modelID     string
	dim         int
	callTimeout time.Duration
}

func NewOpenAIEmbedder(apiKey string, modelID string, callTimeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelID == "" {
		modelID = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	dim := 1536
	if modelID == string(openai.EmbeddingModelTextEmbedding3Large) {
		dim = 3072
	}

	return &OpenAIEmbedder{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		modelID:     modelID,
		dim:         dim,
		callTimeout: callTimeout,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in request-sized chunks. The API returns one
// vector per input in input order, so the output lines up with texts.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		chunk, err := e.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, chunk...)
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	resp, err := e.client.Embeddings.New(callCtx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.modelID),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrUnavailable, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		v64 := item.Embedding
		v := make([]float32, len(v64))
		for i := range v64 {
			v[i] = float32(v64[i])
		}
		l2normalize(v)
		vectors[int(item.Index)] = v
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

// l2normalize scales a vector to unit length so cosine similarity reduces
// to a dot product.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
