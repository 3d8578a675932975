package gpt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
)

func (c *Client) Generate(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	system := request.System
	if request.Mode == llm.ModeStructured {
		system = strings.TrimSpace(system + "\n" + llm.StructuredInstruction)
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(request.Prompt))

	output, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
		Temperature:         openai.Float(request.Temperature),
		Model:               openai.ChatModel(c.modelID),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, llm.ClassifyError(err, apiErr.StatusCode)
		}
		return nil, llm.ClassifyError(err, 0)
	}

	if len(output.Choices) == 0 {
		return nil, &llm.GenerationError{Err: fmt.Errorf("no choices in response")}
	}

	choice := output.Choices[0]
	content := choice.Message.Content

	if request.Mode == llm.ModeStructured {
		content, err = llm.ExtractStructured(content)
		if err != nil {
			return nil, &llm.GenerationError{Err: err}
		}
	}

	return &llm.GenerationResponse{
		Content:    content,
		StopReason: string(choice.FinishReason),
	}, nil
}

func (c *Client) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (*llm.GenerationResponse, error) {
		return c.Generate(ctx, request)
	})
}
