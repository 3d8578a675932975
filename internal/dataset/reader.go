package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

// maxLineBytes bounds a single JSONL line; PubMedQA contexts run long.
const maxLineBytes = 1 << 20

// pubMedQARecord is one line of the PubMedQA instruction dataset.
type pubMedQARecord struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context"`
	Response    string `json:"response"`
}

// Record is one parsed dataset line. A line that fails to parse carries
// the error instead of a sample so the caller decides whether to skip.
type Record struct {
	Line   int
	Sample models.QuestionSample
	Error  error
}

// Reader streams question samples out of a JSONL dataset file.
type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logger,
	}
}

// ReadAll emits one Record per input line until EOF or cancellation.
// The channel is closed when reading stops.
func (r *Reader) ReadAll(ctx context.Context) <-chan Record {
	out := make(chan Record)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			record := Record{Line: line}

			var raw pubMedQARecord
			if err := json.Unmarshal([]byte(text), &raw); err != nil {
				record.Error = fmt.Errorf("line %d: %w", line, err)
			} else if raw.Instruction == "" || raw.Response == "" {
				record.Error = fmt.Errorf("line %d: missing instruction or response", line)
			} else {
				record.Sample = models.QuestionSample{
					Question:           raw.Instruction,
					GroundTruthAnswer:  raw.Response,
					GroundTruthContext: []string{raw.Context},
				}
			}

			select {
			case <-ctx.Done():
				r.logger.Warn().Int("line", line).Msg("dataset read cancelled")
				return
			case out <- record:
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case <-ctx.Done():
			case out <- Record{Line: line + 1, Error: err}:
			}
		}
	}()

	return out
}
