package claude

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
)

const defaultMaxTokens = 1024

// Client talks to the Anthropic messages API directly.
type Client struct {
	client      anthropic.Client
	modelID     string
	retry       llm.RetryPolicy
	callTimeout time.Duration
}

func NewClient(apiKey string, modelID string, callTimeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	if modelID == "" {
		modelID = "claude-sonnet-4-5-20250929"
	}

	return &Client{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelID:     modelID,
		retry:       llm.DefaultRetryPolicy(),
		callTimeout: callTimeout,
	}, nil
}

func (c *Client) Generate(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	system := request.System
	if request.Mode == llm.ModeStructured {
		system = strings.TrimSpace(system + "\n" + llm.StructuredInstruction)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelID),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(request.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: system},
		}
	}

	message, err := c.client.Messages.New(callCtx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, llm.ClassifyError(err, apiErr.StatusCode)
		}
		return nil, llm.ClassifyError(err, 0)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	content := sb.String()

	if request.Mode == llm.ModeStructured {
		content, err = llm.ExtractStructured(content)
		if err != nil {
			return nil, &llm.GenerationError{Err: err}
		}
	}

	return &llm.GenerationResponse{
		Content:    content,
		StopReason: string(message.StopReason),
	}, nil
}

func (c *Client) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (*llm.GenerationResponse, error) {
		return c.Generate(ctx, request)
	})
}
