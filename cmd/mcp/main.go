package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/dataset"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	input := flag.String("input", "", "Corpus dataset file (JSONL)")
	corpusLimit := flag.Int("corpus-limit", 1000, "Max dataset records to index (0 = all)")
	flag.Parse()

	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *input == "" {
		logger.Error().Msg("required flag -input not provided")
		os.Exit(1)
	}

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	if err := loadCorpus(ctx, deps, *input, *corpusLimit); err != nil {
		logger.Error().Err(err).Msg("Failed to index corpus")
		os.Exit(1)
	}

	server := createMCPServer(deps, cfg.TopK)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies, topK int) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rag-agent",
			Version: "v1.0.0",
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a medical yes/no/maybe question grounded in the indexed PubMedQA corpus",
	}, mcpadapter.NewAskHandler(deps.Pipeline, topK))

	return server
}

func loadCorpus(ctx context.Context, deps *setup.Dependencies, path string, limit int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := dataset.NewReader(f, deps.Logger)

	var inputs []index.DocumentInput
	for record := range reader.ReadAll(ctx) {
		if record.Error != nil {
			deps.Logger.Warn().Err(record.Error).Msg("Skipping malformed dataset line")
			continue
		}
		for _, passage := range record.Sample.GroundTruthContext {
			if passage == "" {
				continue
			}
			inputs = append(inputs, index.DocumentInput{Text: passage})
		}
		if limit > 0 && len(inputs) >= limit {
			break
		}
	}

	return deps.Index.Add(ctx, inputs)
}
