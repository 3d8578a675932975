package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageRetrieval  Stage = "retrieval"
	StageGeneration Stage = "generation"
)

// PipelineError reports a failed answer attempt. There is no partial
// recovery: either stage failing fails the whole call.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// DocumentRetriever is the retrieval boundary of the pipeline.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) (models.RetrievalResult, error)
}

// Pipeline answers a question by retrieving supporting passages and
// prompting a chat model with them.
type Pipeline struct {
	retriever DocumentRetriever
	llmClient llm.LLMClient
	logger    *zerolog.Logger
}

func New(retriever DocumentRetriever, llmClient llm.LLMClient, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		llmClient: llmClient,
		logger:    logger,
	}
}

// Answer retrieves the topK most similar documents, generates an answer
// conditioned on them, and returns both. SourceDocuments is exactly the
// ranked retrieval set that built the prompt.
func (p *Pipeline) Answer(ctx context.Context, question string, topK int) (*models.GeneratedAnswer, error) {
	retrieved, err := p.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, &PipelineError{Stage: StageRetrieval, Err: err}
	}

	response, err := p.llmClient.GenerateWithRetry(ctx, llm.GenerationRequest{
		System: answerSystemPrompt,
		Prompt: BuildAnswerPrompt(question, retrieved.Documents),
		Mode:   llm.ModeText,
	})
	if err != nil {
		return nil, &PipelineError{Stage: StageGeneration, Err: err}
	}

	p.logger.Debug().
		Str("question", question).
		Int("documents", len(retrieved.Documents)).
		Msg("answer generated")

	return &models.GeneratedAnswer{
		Question:        question,
		Answer:          response.Content,
		SourceDocuments: retrieved.Documents,
		CreatedAt:       time.Now(),
	}, nil
}
