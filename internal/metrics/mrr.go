package metrics

import (
	"context"
	"strings"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

// MRREvaluator scores retrieval by reciprocal rank: 1/r for the first
// retrieved document whose text matches any ground-truth context passage,
// 0 when none match. The match policy is normalized exact equality
// (case-insensitive, whitespace-collapsed) and is fixed here, not
// configurable per call.
type MRREvaluator struct{}

func NewMRREvaluator() MRREvaluator {
	return MRREvaluator{}
}

func (MRREvaluator) Metric() models.Metric {
	return models.MetricMRR
}

func (MRREvaluator) Score(_ context.Context, sample models.QuestionSample, answer models.GeneratedAnswer) (float64, error) {
	truth := make([]string, len(sample.GroundTruthContext))
	for i, passage := range sample.GroundTruthContext {
		truth[i] = normalizeText(passage)
	}

	for rank, doc := range answer.SourceDocuments {
		text := normalizeText(doc.Text)
		for _, passage := range truth {
			if text == passage {
				return 1.0 / float64(rank+1), nil
			}
		}
	}

	return 0, nil
}

// normalizeText lower-cases and collapses all whitespace runs to single
// spaces so formatting differences between dataset splits don't break
// the match.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
