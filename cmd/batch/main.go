package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/dataset"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/report"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Input dataset file (JSONL), or '-' for stdin")
	output := flag.String("output", "", "Output file, default stdout")
	format := flag.String("format", report.FormatSummary, "Output format: 'jsonl' or 'summary'")
	samples := flag.Int("samples", 25, "Number of questions to sample for evaluation")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Sampling seed, fix for reproducible runs")
	corpusLimit := flag.Int("corpus-limit", 1000, "Max dataset records to index as corpus (0 = all)")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	all := readDataset(ctx, inputFile, deps.Logger)
	log.Info().Int("total", len(all)).Msg("Dataset parsed")

	// Index the corpus before any question runs; a half-built index is
	// unsafe to query, so any failure here is fatal.
	corpus := all
	if *corpusLimit > 0 && *corpusLimit < len(corpus) {
		corpus = corpus[:*corpusLimit]
	}
	if err := indexCorpus(ctx, deps, corpus); err != nil {
		log.Fatal().Err(err).Msg("Failed to index corpus")
	}

	questions := dataset.Sample(corpus, *samples, *seed)
	log.Info().Int("samples", len(questions)).Int64("seed", *seed).Msg("Questions sampled")

	rep, err := deps.Engine.Run(ctx, questions)
	if err != nil {
		log.Warn().Err(err).Msg("Run stopped early")
	}

	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	writer, err := report.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}

	if err := writer.Write(rep); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().Dur("elapsed", time.Since(startTime)).Msg("Evaluation finished")
}

func readDataset(ctx context.Context, source io.Reader, logger *zerolog.Logger) []models.QuestionSample {
	reader := dataset.NewReader(source, logger)

	var all []models.QuestionSample
	for record := range reader.ReadAll(ctx) {
		if record.Error != nil {
			log.Warn().Err(record.Error).Msg("Skipping malformed dataset line")
			continue
		}
		all = append(all, record.Sample)
	}

	if len(all) == 0 {
		log.Fatal().Msg("Dataset contains no usable records")
	}

	return all
}

func indexCorpus(ctx context.Context, deps *setup.Dependencies, corpus []models.QuestionSample) error {
	inputs := make([]index.DocumentInput, 0, len(corpus))
	for i, sample := range corpus {
		for _, passage := range sample.GroundTruthContext {
			if passage == "" {
				continue
			}
			inputs = append(inputs, index.DocumentInput{
				Text: passage,
				Metadata: map[string]string{
					"record": fmt.Sprintf("%d", i),
				},
			})
		}
	}

	return deps.Index.Add(ctx, inputs)
}
