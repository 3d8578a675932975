package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/config"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/rs/zerolog"
)

const faithfulnessSystemPrompt = "You are an evaluation judge. You respond only with the requested JSON."

// judgeResponse is the structured verdict the judging model must return.
type judgeResponse struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// FaithfulnessEvaluator asks a judging model whether every claim in the
// answer is supported by the documents the answer was conditioned on.
// The judge runs in structured output mode; a malformed verdict is a
// metric failure for that sample, never a silent zero.
type FaithfulnessEvaluator struct {
	promptTemplate *template.Template
	modelConfig    config.ModelConfig
	llmClient      llm.LLMClient
	logger         *zerolog.Logger
}

func NewFaithfulnessEvaluator(judgeCfg config.JudgeConfiguration, llmClient llm.LLMClient, logger *zerolog.Logger) (*FaithfulnessEvaluator, error) {
	tmpl, err := template.New(judgeCfg.Name).Parse(judgeCfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template for judge %s: %w", judgeCfg.Name, err)
	}

	if judgeCfg.Model == nil {
		return nil, fmt.Errorf("judge %s has nil model config (should be populated by config loader)", judgeCfg.Name)
	}

	return &FaithfulnessEvaluator{
		promptTemplate: tmpl,
		modelConfig:    *judgeCfg.Model,
		llmClient:      llmClient,
		logger:         logger,
	}, nil
}

func (e *FaithfulnessEvaluator) Metric() models.Metric {
	return models.MetricFaithfulness
}

func (e *FaithfulnessEvaluator) Score(ctx context.Context, _ models.QuestionSample, answer models.GeneratedAnswer) (float64, error) {
	prompt, err := e.buildPrompt(answer)
	if err != nil {
		return 0, &MetricError{Metric: models.MetricFaithfulness, Err: err}
	}

	request := llm.GenerationRequest{
		System:      faithfulnessSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   e.modelConfig.MaxTokens,
		Temperature: e.modelConfig.Temperature,
		Mode:        llm.ModeStructured,
	}

	var resp *llm.GenerationResponse
	if e.modelConfig.Retry {
		resp, err = e.llmClient.GenerateWithRetry(ctx, request)
	} else {
		resp, err = e.llmClient.Generate(ctx, request)
	}
	if err != nil {
		return 0, &MetricError{Metric: models.MetricFaithfulness, Err: err}
	}

	var verdict judgeResponse
	if err := json.Unmarshal([]byte(resp.Content), &verdict); err != nil {
		e.logger.Error().Err(err).Str("content", resp.Content).Msg("failed to deserialize judge verdict")
		return 0, &MetricError{Metric: models.MetricFaithfulness, Err: fmt.Errorf("malformed judge verdict: %w", err)}
	}

	if verdict.Score == 0.0 && verdict.Reason == "" {
		return 0, &MetricError{Metric: models.MetricFaithfulness, Err: fmt.Errorf("judge returned empty score and reason")}
	}

	if verdict.Score < 0.0 || verdict.Score > 1.0 {
		return 0, &MetricError{Metric: models.MetricFaithfulness, Err: fmt.Errorf("judge score %f out of range [0.0, 1.0]", verdict.Score)}
	}

	e.logger.Debug().
		Float64("score", verdict.Score).
		Str("reason", verdict.Reason).
		Msg("faithfulness judged")

	return verdict.Score, nil
}

// buildPrompt renders the judge template over the answer and the exact
// documents the answering model saw, numbered the same way the answer
// prompt numbered them.
func (e *FaithfulnessEvaluator) buildPrompt(answer models.GeneratedAnswer) (string, error) {
	data := struct {
		Question  string
		Answer    string
		Documents string
	}{
		Question:  answer.Question,
		Answer:    answer.Answer,
		Documents: pipeline.FormatDocuments(answer.SourceDocuments),
	}

	var buf bytes.Buffer
	if err := e.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}
