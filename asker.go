package sitechat

import "context"

// Usage reports tokens consumed by one backend call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AnsweredResult is the answer to one question.
type AnsweredResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Usage    Usage    `json:"usage"`
}

// Completion is the structured reply of an answering backend.
type Completion struct {
	Question     string
	Answer       string
	Sources      []string
	InputTokens  int
	OutputTokens int
}

// Completer is a language model constrained to reply with a question,
// an answer and the list of source labels it used.
type Completer interface {
	// Complete sends the system instructions and user message to the backend.
	Complete(ctx context.Context, system, user string) (*Completion, error)
}

// Asker answers questions about the crawled site.
type Asker interface {
	// Ask validates the question and answers it from all stored pages.
	// Returns EINVALID for a malformed question, ENOTREADY when no pages
	// are stored and EBACKEND when the answering backend fails.
	Ask(ctx context.Context, question string) (*AnsweredResult, error)

	// SourceInfo returns the stored pages as a mapping from URL to content.
	SourceInfo(ctx context.Context) (map[string]string, error)
}
