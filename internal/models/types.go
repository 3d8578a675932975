package models

import (
	"time"
)

type Metric string

const (
	MetricMRR          Metric = "mrr"
	MetricFaithfulness Metric = "faithfulness"
	MetricSAS          Metric = "sas"
)

// Document is an indexed corpus passage. Immutable once stored; the index
// owns the embedding.
type Document struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"-"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// QuestionSample is one dataset record: a question with its reference
// answer and the context passages the answer came from.
type QuestionSample struct {
	Question           string   `json:"question"`
	GroundTruthAnswer  string   `json:"ground_truth_answer"`
	GroundTruthContext []string `json:"ground_truth_context"`
}

// RetrievalResult is a ranked list of documents for one query.
// Scores[i] belongs to Documents[i] and the sequence is non-increasing.
type RetrievalResult struct {
	Query     string     `json:"query"`
	Documents []Document `json:"documents"`
	Scores    []float32  `json:"scores"`
}

// GeneratedAnswer pairs an answer with the exact documents the model was
// shown. SourceDocuments is the ranked retrieval set from the same call,
// never a substitute, so faithfulness judging re-examines what the model saw.
type GeneratedAnswer struct {
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	SourceDocuments []Document `json:"source_documents"`
	CreatedAt       time.Time  `json:"created_at"`
}

// MetricScore holds one metric over a whole run: one score per scored
// sample in input order plus the aggregate (arithmetic mean unless the
// metric defines otherwise).
type MetricScore struct {
	Metric    Metric    `json:"metric"`
	PerSample []float64 `json:"per_sample"`
	Aggregate float64   `json:"aggregate"`
	Excluded  int       `json:"excluded"`
}

// SampleRow is one row of the per-sample report view.
type SampleRow struct {
	Index   int                `json:"index"`
	Sample  QuestionSample     `json:"sample"`
	Answer  *GeneratedAnswer   `json:"answer,omitempty"`
	Scores  map[Metric]float64 `json:"scores,omitempty"`
	Failure string             `json:"failure,omitempty"`
}

// EvaluationReport is the read-only result of one engine run.
type EvaluationReport struct {
	Rows       []SampleRow            `json:"rows"`
	Aggregates map[Metric]MetricScore `json:"aggregates"`
	// Excluded counts samples that produced no answer at all, grouped by
	// the kind of error that removed them.
	Excluded  map[string]int `json:"excluded,omitempty"`
	Requested int            `json:"requested"`
	Scored    int            `json:"scored"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
}
