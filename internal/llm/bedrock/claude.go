package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
)

var anthropicVersion = "bedrock-2023-05-31"

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

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

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      request.Temperature,
		System:           system,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: request.Prompt,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize claude request: %w", err)
	}

	output, err := c.client.InvokeModel(callCtx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, llm.ClassifyError(fmt.Errorf("unable to invoke claude model: %w", err), 0)
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, &llm.GenerationError{Err: fmt.Errorf("failed to unmarshal bedrock response: %w", err)}
	}

	var content string
	if len(response.Content) > 0 {
		content = response.Content[0].Text
	}

	if request.Mode == llm.ModeStructured {
		content, err = llm.ExtractStructured(content)
		if err != nil {
			return nil, &llm.GenerationError{Err: err}
		}
	}

	return &llm.GenerationResponse{
		Content:    content,
		StopReason: response.StopReason,
	}, nil
}

func (c *Client) GenerateWithRetry(ctx context.Context, request llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (*llm.GenerationResponse, error) {
		return c.Generate(ctx, request)
	})
}
