package pipeline

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

const answerSystemPrompt = `You are a biomedical question answering assistant.
Answer the question using only the numbered documents provided.
Start with yes, no, or maybe, then justify the answer from the documents.
If the documents do not contain the answer, say so instead of guessing.`

// BuildAnswerPrompt lays the ranked documents out in retrieval order,
// each numbered by its rank so an answer claim can be traced back to the
// document that supports it.
func BuildAnswerPrompt(question string, docs []models.Document) string {
	var sb strings.Builder

	sb.WriteString(FormatDocuments(docs))
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)

	return sb.String()
}

// FormatDocuments numbers documents by rank. The faithfulness judge uses
// the same layout so its document references line up with the answer's.
func FormatDocuments(docs []models.Document) string {
	var sb strings.Builder

	sb.WriteString("Documents:\n")
	if len(docs) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, doc.Text)
	}

	return sb.String()
}
