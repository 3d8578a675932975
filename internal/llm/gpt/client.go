package gpt

import (
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
)

// Client invokes GPT models through the OpenAI chat completions API.
type Client struct {
	client      openai.Client
	modelID     string
	retry       llm.RetryPolicy
	callTimeout time.Duration
}

func NewClient(apiKey string, modelID string, callTimeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	if modelID == "" {
		modelID = "gpt-4o-mini"
	}

	return &Client{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		modelID:     modelID,
		retry:       llm.DefaultRetryPolicy(),
		callTimeout: callTimeout,
	}, nil
}
