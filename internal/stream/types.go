package stream

// QuestionEvent is one question enqueued for answering.
type QuestionEvent struct {
	EventID  string `json:"event_id"`
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AnswerEvent is published once a question has been answered, keyed by
// the originating event id.
type AnswerEvent struct {
	EventID string   `json:"event_id"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Error   string   `json:"error,omitempty"`
}
