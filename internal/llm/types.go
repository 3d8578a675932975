package llm

// OutputMode selects how the model's reply is shaped.
type OutputMode string

const (
	// ModeText returns the model's free-form reply unmodified.
	ModeText OutputMode = "text"
	// ModeStructured constrains the reply to a single JSON value with no
	// surrounding prose. Replies that fail that contract are rejected,
	// never downgraded to text.
	ModeStructured OutputMode = "structured"
)

// StructuredInstruction is appended to the system prompt in ModeStructured.
const StructuredInstruction = "Respond with a single JSON object and nothing else: no markdown, no code fences, no explanation outside the JSON."

type GenerationRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	Mode        OutputMode
}

type GenerationResponse struct {
	Content    string
	StopReason string
}
