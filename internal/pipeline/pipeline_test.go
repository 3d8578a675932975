package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type fakeRetriever struct {
	result models.RetrievalResult
	err    error
}

func (f *fakeRetriever) Retrieve(context.Context, string, int) (models.RetrievalResult, error) {
	return f.result, f.err
}

type fakeLLMClient struct {
	response    *llm.GenerationResponse
	err         error
	lastRequest llm.GenerationRequest
}

func (f *fakeLLMClient) Generate(_ context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	f.lastRequest = request
	return f.response, f.err
}

func (f *fakeLLMClient) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return f.Generate(ctx, request)
}

func TestPipeline_Answer_BindsSourceDocuments(t *testing.T) {
	docs := []models.Document{
		{ID: "doc-4", Text: "first passage"},
		{ID: "doc-1", Text: "second passage"},
	}
	retriever := &fakeRetriever{result: models.RetrievalResult{Documents: docs}}
	client := &fakeLLMClient{response: &llm.GenerationResponse{Content: "yes, because..."}}

	p := New(retriever, client, testLogger())
	answer, err := p.Answer(context.Background(), "does it work?", 2)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer.Question != "does it work?" {
		t.Errorf("expected question preserved, got %q", answer.Question)
	}
	if answer.Answer != "yes, because..." {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if len(answer.SourceDocuments) != 2 {
		t.Fatalf("expected 2 source documents, got %d", len(answer.SourceDocuments))
	}
	if answer.SourceDocuments[0].ID != "doc-4" || answer.SourceDocuments[1].ID != "doc-1" {
		t.Errorf("source documents must be the retrieval set in rank order, got %+v", answer.SourceDocuments)
	}
	if answer.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestPipeline_Answer_PromptLayout(t *testing.T) {
	docs := []models.Document{
		{ID: "doc-0", Text: "alpha"},
		{ID: "doc-1", Text: "beta"},
	}
	retriever := &fakeRetriever{result: models.RetrievalResult{Documents: docs}}
	client := &fakeLLMClient{response: &llm.GenerationResponse{Content: "no"}}

	p := New(retriever, client, testLogger())
	if _, err := p.Answer(context.Background(), "q?", 2); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	prompt := client.lastRequest.Prompt
	if !strings.Contains(prompt, "[1] alpha") || !strings.Contains(prompt, "[2] beta") {
		t.Errorf("expected numbered documents in prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: q?") {
		t.Errorf("expected question in prompt, got:\n%s", prompt)
	}
	if strings.Index(prompt, "[1] alpha") > strings.Index(prompt, "Question:") {
		t.Error("documents must come before the question")
	}
	if client.lastRequest.Mode != llm.ModeText {
		t.Errorf("expected text mode, got %s", client.lastRequest.Mode)
	}
	if client.lastRequest.System == "" {
		t.Error("expected system prompt to be set")
	}
}

func TestPipeline_Answer_RetrievalFailure(t *testing.T) {
	retrieveErr := errors.New("index unavailable")
	p := New(&fakeRetriever{err: retrieveErr}, &fakeLLMClient{}, testLogger())

	_, err := p.Answer(context.Background(), "q", 3)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if pErr.Stage != StageRetrieval {
		t.Errorf("expected retrieval stage, got %s", pErr.Stage)
	}
	if !errors.Is(err, retrieveErr) {
		t.Errorf("expected cause preserved, got %v", err)
	}
}

func TestPipeline_Answer_GenerationFailure(t *testing.T) {
	genErr := &llm.GenerationError{Transient: false, Err: errors.New("bad request")}
	retriever := &fakeRetriever{result: models.RetrievalResult{Documents: []models.Document{{Text: "x"}}}}
	p := New(retriever, &fakeLLMClient{err: genErr}, testLogger())

	_, err := p.Answer(context.Background(), "q", 1)

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if pErr.Stage != StageGeneration {
		t.Errorf("expected generation stage, got %s", pErr.Stage)
	}
	if !errors.Is(err, genErr) {
		t.Errorf("expected cause preserved, got %v", err)
	}
}

func TestFormatDocuments_Empty(t *testing.T) {
	got := FormatDocuments(nil)
	if !strings.Contains(got, "(none)") {
		t.Errorf("expected (none) marker, got %q", got)
	}
}
