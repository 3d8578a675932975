package metrics

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

// Evaluator scores one answered sample on a single quality metric.
// Scores are in [0, 1]. A returned error means this sample could not be
// scored on this metric and must be excluded from the aggregate, not
// coerced to a number.
type Evaluator interface {
	Metric() models.Metric
	Score(ctx context.Context, sample models.QuestionSample, answer models.GeneratedAnswer) (float64, error)
}

// MetricError reports a failed metric computation for one sample.
type MetricError struct {
	Metric models.Metric
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("metric %s computation failed: %v", e.Metric, e.Err)
}

func (e *MetricError) Unwrap() error {
	return e.Err
}
