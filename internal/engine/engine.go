package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_provider.go -package=mocks

// AnswerProvider is the pipeline boundary the engine drives. Mocked in
// tests so runs are deterministic.
type AnswerProvider interface {
	Answer(ctx context.Context, question string, topK int) (*models.GeneratedAnswer, error)
}

// Engine runs the answer pipeline over a sample set, scores the results
// with every evaluator, and assembles the report. One failing sample is
// recorded and skipped, never aborts the run; only cancellation stops it.
type Engine struct {
	pipeline   AnswerProvider
	evaluators []metrics.Evaluator
	topK       int
	workers    int
	logger     *zerolog.Logger
}

func New(provider AnswerProvider, evaluators []metrics.Evaluator, topK int, workers int, logger *zerolog.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		pipeline:   provider,
		evaluators: evaluators,
		topK:       topK,
		workers:    workers,
		logger:     logger,
	}
}

type answerResult struct {
	answer *models.GeneratedAnswer
	err    error
}

// Run processes samples in input order. Answering may fan out over the
// configured worker count; report order is restored by sample index
// before any scoring or aggregation. On cancellation the partial report
// built from completed samples is returned together with the context
// error.
func (e *Engine) Run(ctx context.Context, samples []models.QuestionSample) (*models.EvaluationReport, error) {
	started := time.Now()

	report := &models.EvaluationReport{
		Requested:  len(samples),
		Aggregates: make(map[models.Metric]models.MetricScore),
		Excluded:   make(map[string]int),
		StartedAt:  started,
	}

	results := e.answerAll(ctx, samples)

	perMetric := make(map[models.Metric]*models.MetricScore)
	for _, ev := range e.evaluators {
		perMetric[ev.Metric()] = &models.MetricScore{Metric: ev.Metric()}
	}

	for i, sample := range samples {
		if results[i].err != nil && errors.Is(results[i].err, context.Canceled) {
			break
		}

		row := models.SampleRow{
			Index:  i,
			Sample: sample,
		}

		if results[i].err != nil {
			kind := errorKind(results[i].err)
			row.Failure = results[i].err.Error()
			report.Excluded[kind]++
			e.logger.Warn().Err(results[i].err).Int("sample", i).Str("kind", kind).Msg("sample excluded")
			report.Rows = append(report.Rows, row)
			continue
		}

		row.Answer = results[i].answer
		row.Scores = make(map[models.Metric]float64, len(e.evaluators))

		for _, ev := range e.evaluators {
			score, err := ev.Score(ctx, sample, *results[i].answer)
			if err != nil {
				perMetric[ev.Metric()].Excluded++
				e.logger.Warn().Err(err).Int("sample", i).Str("metric", string(ev.Metric())).Msg("metric excluded for sample")
				continue
			}
			perMetric[ev.Metric()].PerSample = append(perMetric[ev.Metric()].PerSample, score)
			row.Scores[ev.Metric()] = score
		}

		report.Scored++
		report.Rows = append(report.Rows, row)
	}

	for metric, score := range perMetric {
		score.Aggregate = mean(score.PerSample)
		report.Aggregates[metric] = *score
	}

	report.Duration = time.Since(started)

	e.logger.Info().
		Int("requested", report.Requested).
		Int("scored", report.Scored).
		Dur("duration", report.Duration).
		Msg("evaluation run complete")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// answerAll produces one result per sample, indexed by input position.
// With a single worker samples run strictly in order; with more, order is
// only restored in the result slice. Cancellation is observed at sample
// boundaries; an in-flight call finishes but its result is discarded by
// Run when the context error is seen first.
func (e *Engine) answerAll(ctx context.Context, samples []models.QuestionSample) []answerResult {
	results := make([]answerResult, len(samples))

	if e.workers == 1 {
		for i, sample := range samples {
			if err := ctx.Err(); err != nil {
				results[i] = answerResult{err: err}
				continue
			}
			answer, err := e.pipeline.Answer(ctx, sample.Question, e.topK)
			results[i] = answerResult{answer: answer, err: err}
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				answer, err := e.pipeline.Answer(ctx, samples[i].Question, e.topK)
				results[i] = answerResult{answer: answer, err: err}
			}
		}()
	}

dispatch:
	for i := range samples {
		select {
		case <-ctx.Done():
			for j := i; j < len(samples); j++ {
				if results[j].answer == nil && results[j].err == nil {
					results[j] = answerResult{err: ctx.Err()}
				}
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// RankedBySAS orders the scored rows best-first by SAS score. The sort is
// stable, so equal scores keep input order. Rows without a SAS score are
// left out.
func RankedBySAS(report *models.EvaluationReport) []models.SampleRow {
	var ranked []models.SampleRow
	for _, row := range report.Rows {
		if row.Scores == nil {
			continue
		}
		if _, ok := row.Scores[models.MetricSAS]; ok {
			ranked = append(ranked, row)
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Scores[models.MetricSAS] > ranked[b].Scores[models.MetricSAS]
	})
	return ranked
}

func errorKind(err error) string {
	var pErr *pipeline.PipelineError
	if errors.As(err, &pErr) {
		return fmt.Sprintf("pipeline:%s", pErr.Stage)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "unknown"
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
