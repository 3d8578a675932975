package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/api"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/engine"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/retriever"
	"github.com/rs/zerolog"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int { return 2 }

type stubLLMClient struct {
	content string
	err     error
}

func (s *stubLLMClient) Generate(context.Context, llm.GenerationRequest) (*llm.GenerationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerationResponse{Content: s.content}, nil
}

func (s *stubLLMClient) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return s.Generate(ctx, request)
}

func setupTestAPI(t *testing.T, client llm.LLMClient) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	store := index.NewStore(stubEmbedder{}, &logger)
	err := store.Add(context.Background(), []index.DocumentInput{
		{Text: "aspirin is an antipyretic"},
		{Text: "water is a liquid"},
	})
	if err != nil {
		t.Fatalf("failed to index test corpus: %v", err)
	}

	ret := retriever.New(stubEmbedder{}, store, &logger)
	pipe := pipeline.New(ret, client, &logger)
	evaluators := []metrics.Evaluator{
		metrics.NewMRREvaluator(),
		metrics.NewSASEvaluator(stubEmbedder{}),
	}
	eng := engine.New(pipe, evaluators, 2, 1, &logger)
	handler := api.NewHandler(pipe, store, eng, 2, &logger)

	container := restful.NewContainer()
	api.RegisterRoutes(container, handler)
	return container
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var health api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("expected status ok, got %q", health.Status)
	}
	if health.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", health.Documents)
	}
}

func TestAPI_Ask_Success(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes, aspirin reduces fever"})

	body, _ := json.Marshal(api.AskRequest{Question: "Does aspirin reduce fever?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var answer models.GeneratedAnswer
	if err := json.Unmarshal(recorder.Body.Bytes(), &answer); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if answer.Answer != "yes, aspirin reduces fever" {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if len(answer.SourceDocuments) != 2 {
		t.Errorf("expected 2 source documents, got %d", len(answer.SourceDocuments))
	}
}

func TestAPI_Ask_EmptyQuestion(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes"})

	body, _ := json.Marshal(api.AskRequest{Question: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestAPI_Ask_InvalidTopK(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes"})

	body, _ := json.Marshal(api.AskRequest{Question: "q", TopK: -1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid top_k, got %d", recorder.Code)
	}
}

func TestAPI_Evaluate(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes"})

	body, _ := json.Marshal(api.EvaluateRequest{
		Samples: []models.QuestionSample{
			{
				Question:           "Does aspirin reduce fever?",
				GroundTruthAnswer:  "yes",
				GroundTruthContext: []string{"aspirin is an antipyretic"},
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var report models.EvaluationReport
	if err := json.Unmarshal(recorder.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	if report.Requested != 1 || report.Scored != 1 {
		t.Errorf("expected 1 requested and 1 scored, got %d/%d", report.Requested, report.Scored)
	}
	if _, ok := report.Aggregates[models.MetricMRR]; !ok {
		t.Error("expected MRR aggregate in report")
	}
}

func TestAPI_Evaluate_NoSamples(t *testing.T) {
	container := setupTestAPI(t, &stubLLMClient{content: "yes"})

	body, _ := json.Marshal(api.EvaluateRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestAPI_Ask_PipelineFailure(t *testing.T) {
	client := &stubLLMClient{err: &llm.GenerationError{Transient: false, Err: errors.New("model unavailable")}}
	container := setupTestAPI(t, client)

	body, _ := json.Marshal(api.AskRequest{Question: "q"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", recorder.Code)
	}
}
