package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractStructured enforces the ModeStructured contract on a model reply:
// the reply must be exactly one JSON value, optionally wrapped in a
// Markdown code fence (some models add one despite instructions). The
// fence is stripped; anything else malformed is an error, never a
// fallback to free text.
func ExtractStructured(content string) (string, error) {
	content = stripMarkdownCodeBlock(content)
	if !json.Valid([]byte(content)) {
		return "", fmt.Errorf("structured reply is not a single JSON value: %q", truncate(content, 120))
	}
	return content, nil
}

// stripMarkdownCodeBlock removes ```json ... ``` wrapping if present.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
