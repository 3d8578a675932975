package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/engine"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// Writer renders an evaluation report either as machine-readable JSONL
// (one row per line plus a trailing aggregate record) or as a
// human-readable summary block.
type Writer struct {
	out    io.Writer
	format string
	logger *zerolog.Logger
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case FormatJSONL, FormatSummary:
	default:
		return nil, fmt.Errorf("unsupported format %q (want %s or %s)", format, FormatJSONL, FormatSummary)
	}

	return &Writer{
		out:    out,
		format: format,
		logger: logger,
	}, nil
}

func (w *Writer) Write(rep *models.EvaluationReport) error {
	switch w.format {
	case FormatJSONL:
		return w.writeJSONL(rep)
	default:
		return w.writeSummary(rep)
	}
}

func (w *Writer) writeJSONL(rep *models.EvaluationReport) error {
	enc := json.NewEncoder(w.out)
	for _, row := range rep.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encoding row %d: %w", row.Index, err)
		}
	}

	aggregate := struct {
		Aggregates map[models.Metric]models.MetricScore `json:"aggregates"`
		Excluded   map[string]int                       `json:"excluded,omitempty"`
		Requested  int                                  `json:"requested"`
		Scored     int                                  `json:"scored"`
	}{rep.Aggregates, rep.Excluded, rep.Requested, rep.Scored}

	if err := enc.Encode(aggregate); err != nil {
		return fmt.Errorf("encoding aggregate record: %w", err)
	}

	w.logger.Info().Int("rows", len(rep.Rows)).Msg("report written")
	return nil
}

func (w *Writer) writeSummary(rep *models.EvaluationReport) error {
	var sb strings.Builder
	rule := strings.Repeat("=", 80)

	sb.WriteString(rule + "\n")
	sb.WriteString("EVALUATION RESULTS\n")
	sb.WriteString(rule + "\n\n")

	metricsInOrder := make([]models.Metric, 0, len(rep.Aggregates))
	for metric := range rep.Aggregates {
		metricsInOrder = append(metricsInOrder, metric)
	}
	sort.Slice(metricsInOrder, func(a, b int) bool { return metricsInOrder[a] < metricsInOrder[b] })

	for _, metric := range metricsInOrder {
		score := rep.Aggregates[metric]
		fmt.Fprintf(&sb, "%-14s %.4f  (%d samples", metricLabel(metric), score.Aggregate, len(score.PerSample))
		if score.Excluded > 0 {
			fmt.Fprintf(&sb, ", %d excluded", score.Excluded)
		}
		sb.WriteString(")\n")
	}

	fmt.Fprintf(&sb, "\nSamples: %d requested, %d scored\n", rep.Requested, rep.Scored)
	if len(rep.Excluded) > 0 {
		kinds := make([]string, 0, len(rep.Excluded))
		for kind := range rep.Excluded {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(&sb, "  excluded %d (%s)\n", rep.Excluded[kind], kind)
		}
	}

	ranked := engine.RankedBySAS(rep)
	if len(ranked) > 0 {
		sb.WriteString("\nBest answers by semantic similarity:\n")
		for _, row := range topN(ranked, 3) {
			fmt.Fprintf(&sb, "  [%d] %.4f  %s\n", row.Index, row.Scores[models.MetricSAS], truncate(row.Sample.Question, 70))
		}
		sb.WriteString("Worst answers by semantic similarity:\n")
		for _, row := range bottomN(ranked, 3) {
			fmt.Fprintf(&sb, "  [%d] %.4f  %s\n", row.Index, row.Scores[models.MetricSAS], truncate(row.Sample.Question, 70))
		}
	}

	sb.WriteString("\n" + rule + "\n")

	_, err := io.WriteString(w.out, sb.String())
	return err
}

func metricLabel(metric models.Metric) string {
	switch metric {
	case models.MetricMRR:
		return "MRR"
	case models.MetricFaithfulness:
		return "Faithfulness"
	case models.MetricSAS:
		return "SAS"
	default:
		return string(metric)
	}
}

func topN(rows []models.SampleRow, n int) []models.SampleRow {
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}

func bottomN(rows []models.SampleRow, n int) []models.SampleRow {
	if n > len(rows) {
		n = len(rows)
	}
	return rows[len(rows)-n:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
