package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/api"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/dataset"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/setup"
	"github.com/rs/cors"
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

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx := context.Background()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	if err := loadCorpus(ctx, deps, *input, *corpusLimit); err != nil {
		log.Fatal().Err(err).Msg("Failed to index corpus")
	}

	handler := api.NewHandler(deps.Pipeline, deps.Index, deps.Engine, cfg.TopK, &logger)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	port := os.Getenv("RAG_AGENT_API_PORT")
	if port == "" {
		port = "18082"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("address", addr).Int("documents", deps.Index.Len()).Msg("Starting RAG Agent API")

	server := http.Server{
		Addr:    addr,
		Handler: corsHandler.Handler(container),
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
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
			log.Warn().Err(record.Error).Msg("Skipping malformed dataset line")
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
