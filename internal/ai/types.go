package ai

// Turn is one prior exchange entry supplied by the caller. Entries whose
// role is not exactly "user" or "assistant", or whose role or content is
// empty, are silently dropped when the prompt is assembled.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call. Zero-valued option fields fall
// back to the configured defaults; Temperature is a pointer so callers can
// explicitly request low-temperature runs like the extraction pass.
type Request struct {
	SystemPrompt string
	History      []Turn
	UserMessage  string

	Model       string
	MaxTokens   int
	Temperature *float32
}

// promptMessage is a backend-neutral prompt entry.
type promptMessage struct {
	Role    string
	Content string
}
