package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/config"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// MockLLMClient for testing
type MockLLMClient struct {
	ResponseToReturn *llm.GenerationResponse
	ErrorToReturn    error
	RetryUsed        bool
	LastRequest      *llm.GenerationRequest
}

func (m *MockLLMClient) Generate(_ context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	m.LastRequest = &request
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func (m *MockLLMClient) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	m.RetryUsed = true
	return m.Generate(ctx, request)
}

func judgeCfg(retry bool) config.JudgeConfiguration {
	return config.JudgeConfiguration{
		Name:    "faithfulness",
		Enabled: true,
		Prompt:  "Documents:\n{{.Documents}}\nQuestion: {{.Question}}\nAnswer: {{.Answer}}",
		Model: &config.ModelConfig{
			MaxTokens:   256,
			Temperature: 0.0,
			Retry:       retry,
		},
	}
}

func judgedAnswer() models.GeneratedAnswer {
	return models.GeneratedAnswer{
		Question: "Does it work?",
		Answer:   "yes, the documents say so",
		SourceDocuments: []models.Document{
			{ID: "doc-0", Text: "it works"},
			{ID: "doc-1", Text: "unrelated"},
		},
	}
}

func TestNewFaithfulnessEvaluator_InvalidTemplate(t *testing.T) {
	cfg := judgeCfg(false)
	cfg.Prompt = "{{.Broken"

	_, err := NewFaithfulnessEvaluator(cfg, &MockLLMClient{}, testLogger())
	if err == nil {
		t.Error("expected error for invalid template")
	}
}

func TestNewFaithfulnessEvaluator_NilModelConfig(t *testing.T) {
	cfg := judgeCfg(false)
	cfg.Model = nil

	_, err := NewFaithfulnessEvaluator(cfg, &MockLLMClient{}, testLogger())
	if err == nil {
		t.Error("expected error for nil model config")
	}
}

func TestFaithfulnessEvaluator_Score_Success(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.GenerationResponse{
			Content: `{"score": 0.85, "reason": "all claims supported"}`,
		},
	}

	evaluator, err := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())
	if err != nil {
		t.Fatalf("NewFaithfulnessEvaluator failed: %v", err)
	}

	score, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 0.85 {
		t.Errorf("expected 0.85, got %f", score)
	}

	if mockClient.LastRequest.Mode != llm.ModeStructured {
		t.Errorf("judge must run in structured mode, got %s", mockClient.LastRequest.Mode)
	}
	if mockClient.RetryUsed {
		t.Error("retry disabled in config but GenerateWithRetry was called")
	}
}

func TestFaithfulnessEvaluator_Score_PromptContainsSourceDocuments(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.GenerationResponse{Content: `{"score": 1.0, "reason": "ok"}`},
	}
	evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())

	if _, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer()); err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	prompt := mockClient.LastRequest.Prompt
	if !strings.Contains(prompt, "[1] it works") || !strings.Contains(prompt, "[2] unrelated") {
		t.Errorf("expected numbered source documents in judge prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Does it work?") {
		t.Errorf("expected question in judge prompt, got:\n%s", prompt)
	}
}

func TestFaithfulnessEvaluator_Score_UsesRetryWhenConfigured(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.GenerationResponse{Content: `{"score": 0.9, "reason": "ok"}`},
	}
	evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(true), mockClient, testLogger())

	if _, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer()); err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !mockClient.RetryUsed {
		t.Error("expected GenerateWithRetry when retry is configured")
	}
}

func TestFaithfulnessEvaluator_Score_LLMFailure(t *testing.T) {
	mockClient := &MockLLMClient{ErrorToReturn: errors.New("API error")}
	evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())

	_, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer())

	var mErr *MetricError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected MetricError, got %T", err)
	}
	if mErr.Metric != models.MetricFaithfulness {
		t.Errorf("expected faithfulness metric in error, got %s", mErr.Metric)
	}
}

func TestFaithfulnessEvaluator_Score_MalformedVerdict(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.GenerationResponse{Content: `not valid json`},
	}
	evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())

	_, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer())

	var mErr *MetricError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected MetricError for malformed verdict, got %v", err)
	}
}

func TestFaithfulnessEvaluator_Score_EmptyScoreAndReason(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.GenerationResponse{Content: `{"score": 0.0, "reason": ""}`},
	}
	evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())

	_, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer())
	if err == nil {
		t.Error("expected error for empty score and reason")
	}
}

func TestFaithfulnessEvaluator_Score_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{"negative", -0.5},
		{"too high", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &MockLLMClient{
				ResponseToReturn: &llm.GenerationResponse{
					Content: fmt.Sprintf(`{"score": %f, "reason": "test"}`, tt.score),
				},
			}
			evaluator, _ := NewFaithfulnessEvaluator(judgeCfg(false), mockClient, testLogger())

			_, err := evaluator.Score(context.Background(), models.QuestionSample{}, judgedAnswer())
			if err == nil {
				t.Error("expected error for out of range score")
			}
		})
	}
}
