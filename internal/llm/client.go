package llm

import (
	"context"
)

// LLMClient is the single-turn chat generation boundary. Each call is a
// fresh system + user exchange; no conversation state survives between
// invocations. Implementations resolve credentials once at construction
// and apply their own per-call timeout.
type LLMClient interface {
	Generate(ctx context.Context, request GenerationRequest) (*GenerationResponse, error)
	GenerateWithRetry(ctx context.Context, request GenerationRequest) (*GenerationResponse, error)
}
