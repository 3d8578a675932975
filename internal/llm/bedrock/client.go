package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
)

// Client invokes Claude models through AWS Bedrock.
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	retry       llm.RetryPolicy
	callTimeout time.Duration
}

func NewClient(ctx context.Context, region string, modelID string, callTimeout time.Duration) (*Client, error) {
	if modelID == "" {
		return nil, fmt.Errorf("bedrock model ID is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Client{
		client:      bedrockruntime.NewFromConfig(cfg),
		modelID:     modelID,
		retry:       llm.DefaultRetryPolicy(),
		callTimeout: callTimeout,
	}, nil
}
