package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/dataset"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	red "github.com/povarna/generative-ai-agents/rag-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/setup"
	setuplogger "github.com/povarna/generative-ai-agents/rag-agent/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/stream"
	streamredis "github.com/povarna/generative-ai-agents/rag-agent/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := setuplogger.New(os.Getenv("LOG_LEVEL"))
	log.Logger = logger

	input := flag.String("input", "", "Corpus dataset file (JSONL)")
	corpusLimit := flag.Int("corpus-limit", 1000, "Max dataset records to index (0 = all)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	if err := loadCorpus(ctx, deps, *input, *corpusLimit); err != nil {
		log.Fatal().Err(err).Msg("Failed to index corpus")
	}

	streamCfg := stream.NewStreamConfig(
		os.Getenv("REDIS_ADDR"),
		"rag-questions",
		"rag-answers",
		"rag-group",
		os.Getenv("HOSTNAME"),
	)

	redisClient, err := red.ConnectRedis(ctx, streamCfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 5, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	consumer := streamredis.NewConsumer(redisClient, streamCfg, deps.Pipeline, &logger)

	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	log.Info().Msg("RAG Agent worker stopped")
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
