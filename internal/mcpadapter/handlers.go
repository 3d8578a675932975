package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
)

// AskInput is the MCP tool input schema (matches HTTP API field names).
type AskInput struct {
	Question string `json:"question" jsonschema:"the medical question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of supporting passages to retrieve (default 3)"`
}

// NewAskHandler returns a tool handler that answers through the given
// pipeline. Pass the returned function to mcp.AddTool.
func NewAskHandler(pipe *pipeline.Pipeline, defaultTopK int) func(context.Context, *mcp.CallToolRequest, AskInput) (*mcp.CallToolResult, models.GeneratedAnswer, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, models.GeneratedAnswer, error) {
		topK := input.TopK
		if topK == 0 {
			topK = defaultTopK
		}

		answer, err := pipe.Answer(ctx, input.Question, topK)
		if err != nil {
			return nil, models.GeneratedAnswer{}, err
		}
		return nil, *answer, nil
	}
}
