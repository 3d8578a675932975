package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/embedding"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

// ErrInvalidTopK reports a search with top_k below 1.
var ErrInvalidTopK = errors.New("top_k must be >= 1")

// DocumentInput is a passage to index, before it has an id or embedding.
type DocumentInput struct {
	Text     string
	Metadata map[string]string
}

// Store is an in-memory document index. Population is single-writer and
// must finish before the first Search; after that any number of readers
// may search concurrently without locking.
type Store struct {
	embedder embedding.Embedder
	docs     []models.Document
	logger   *zerolog.Logger
}

func NewStore(embedder embedding.Embedder, logger *zerolog.Logger) *Store {
	return &Store{
		embedder: embedder,
		logger:   logger,
	}
}

// Add embeds each input and appends it to the index. Ids are assigned from
// the insertion position and stay stable for the life of the store. There
// is no deduplication; inserting the same text twice stores it twice.
func (s *Store) Add(ctx context.Context, inputs []DocumentInput) error {
	if len(inputs) == 0 {
		return nil
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d documents: %w", len(inputs), err)
	}

	for i, in := range inputs {
		s.docs = append(s.docs, models.Document{
			ID:        fmt.Sprintf("doc-%d", len(s.docs)),
			Text:      in.Text,
			Embedding: vectors[i],
			Metadata:  in.Metadata,
		})
	}

	s.logger.Info().Int("added", len(inputs)).Int("total", len(s.docs)).Msg("documents indexed")
	return nil
}

// Len returns the number of indexed documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Search scores every stored document against the query embedding by
// cosine similarity and returns the topK best, ordered by score
// descending. Equal scores keep insertion order, earlier wins.
func (s *Store) Search(queryEmbedding []float32, topK int) (models.RetrievalResult, error) {
	if topK < 1 {
		return models.RetrievalResult{}, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if len(s.docs) == 0 {
		return models.RetrievalResult{}, nil
	}

	order := make([]int, len(s.docs))
	scores := make([]float32, len(s.docs))
	for i, doc := range s.docs {
		order[i] = i
		scores[i] = CosineSimilarity(queryEmbedding, doc.Embedding)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	result := models.RetrievalResult{
		Documents: make([]models.Document, topK),
		Scores:    make([]float32, topK),
	}
	for i := 0; i < topK; i++ {
		result.Documents[i] = s.docs[order[i]]
		result.Scores[i] = scores[order[i]]
	}

	return result, nil
}

// CosineSimilarity returns a value in [-1, 1]; mismatched or zero vectors
// score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
