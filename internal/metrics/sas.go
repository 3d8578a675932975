package metrics

import (
	"context"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/embedding"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

// SASEvaluator scores semantic answer similarity: the cosine similarity
// between the embeddings of the generated and the ground-truth answer,
// clamped at 0 from below so the score stays in [0, 1].
type SASEvaluator struct {
	embedder embedding.Embedder
}

func NewSASEvaluator(embedder embedding.Embedder) *SASEvaluator {
	return &SASEvaluator{embedder: embedder}
}

func (e *SASEvaluator) Metric() models.Metric {
	return models.MetricSAS
}

func (e *SASEvaluator) Score(ctx context.Context, sample models.QuestionSample, answer models.GeneratedAnswer) (float64, error) {
	vectors, err := e.embedder.EmbedBatch(ctx, []string{answer.Answer, sample.GroundTruthAnswer})
	if err != nil {
		return 0, &MetricError{Metric: models.MetricSAS, Err: err}
	}

	similarity := float64(index.CosineSimilarity(vectors[0], vectors[1]))
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	return similarity, nil
}
