package retriever

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/embedding"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

// Searcher is the document index boundary the retriever queries.
type Searcher interface {
	Search(queryEmbedding []float32, topK int) (models.RetrievalResult, error)
}

// Retriever embeds a query and runs similarity search against the index.
type Retriever struct {
	embedder embedding.Embedder
	index    Searcher
	logger   *zerolog.Logger
}

func New(embedder embedding.Embedder, index Searcher, logger *zerolog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Retrieve returns the topK documents most similar to query. Errors from
// the embedder or the index pass through untouched apart from the
// retrieval tag.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (models.RetrievalResult, error) {
	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("retrieval failed: embedding query: %w", err)
	}

	result, err := r.index.Search(queryEmbedding, topK)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("retrieval failed: searching index: %w", err)
	}

	result.Query = query

	r.logger.Debug().
		Str("query", query).
		Int("top_k", topK).
		Int("retrieved", len(result.Documents)).
		Msg("retrieval complete")

	return result, nil
}
