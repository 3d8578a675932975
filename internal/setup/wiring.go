package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/config"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/embedding"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/engine"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm/claude"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/retriever"
	"github.com/rs/zerolog"
)

type Config struct {
	Provider         string
	AnthropicKey     string
	ClaudeModelID    string
	AWSRegion        string
	BedrockModelID   string
	OpenAIKey        string
	OpenAIModelID    string
	EmbeddingModelID string
	TopK             int
	Workers          int
	CallTimeout      time.Duration
}

type Dependencies struct {
	Embedder embedding.Embedder
	Index    *index.Store
	Pipeline *pipeline.Pipeline
	Engine   *engine.Engine
	Logger   *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		Provider:         getEnv("LLM_PROVIDER", "anthropic"),
		AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:   getEnv("BEDROCK_MODEL_ID", ""),
		OpenAIKey:        getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:    getEnv("OPEN_AI_MODEL_ID", ""),
		EmbeddingModelID: getEnv("EMBEDDING_MODEL_ID", ""),
		TopK:             getEnvInt("TOP_K", 3),
		Workers:          getEnvInt("WORKERS", 1),
		CallTimeout:      time.Duration(getEnvInt("LLM_CALL_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModelID, cfg.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store := index.NewStore(embedder, logger)
	ret := retriever.New(embedder, store, logger)
	pipe := pipeline.New(ret, llmClient, logger)

	judgesCfg, err := config.LoadJudgesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load judges config: %w", err)
	}

	judgeCfg, ok := judgesCfg.Judges[config.FaithfulnessJudgeName]
	if !ok || !judgeCfg.Enabled {
		return nil, fmt.Errorf("faithfulness judge missing or disabled in judges config")
	}

	faithfulness, err := metrics.NewFaithfulnessEvaluator(judgeCfg, llmClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create faithfulness evaluator: %w", err)
	}

	evaluators := []metrics.Evaluator{
		metrics.NewMRREvaluator(),
		faithfulness,
		metrics.NewSASEvaluator(embedder),
	}

	eng := engine.New(pipe, evaluators, cfg.TopK, cfg.Workers, logger)

	return &Dependencies{
		Embedder: embedder,
		Index:    store,
		Pipeline: pipe,
		Engine:   eng,
		Logger:   logger,
	}, nil
}

func createLLMClient(ctx context.Context, cfg *Config) (llm.LLMClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return claude.NewClient(cfg.AnthropicKey, cfg.ClaudeModelID, cfg.CallTimeout)
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.BedrockModelID, cfg.CallTimeout)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID, cfg.CallTimeout)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
