// Package gemini implements the answering backend and token counting
// using Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/sitechat"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Completer implements sitechat.Completer at compile time.
var _ sitechat.Completer = (*Completer)(nil)

// Completer implements sitechat.Completer using Google Gemini with a JSON
// response schema.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a new Completer. An empty model selects DefaultModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model}
}

// Model returns the name of the model in use.
func (c *Completer) Model() string { return c.model }

// Complete sends one request and decodes the structured reply.
func (c *Completer) Complete(ctx context.Context, system, user string) (*sitechat.Completion, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, BuildContents(user), BuildConfig(system))
	if err != nil {
		return nil, err
	}
	return ParseResponse(result)
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// The reply is constrained to ResponseSchema.
func BuildConfig(system string) *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
}

// BuildContents wraps the user message as a single user turn.
func BuildContents(user string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(user, "user")}
}

// ResponseSchema describes the JSON object the model must return.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {Type: genai.TypeString, Description: "The question being answered."},
			"answer":   {Type: genai.TypeString, Description: "The answer, in the language of the question."},
			"sources": {
				Type:        genai.TypeArray,
				Description: "Source labels of the information used in the answer.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required:         []string{"question", "answer", "sources"},
		PropertyOrdering: []string{"question", "answer", "sources"},
	}
}

// reply is the JSON shape requested by ResponseSchema.
type reply struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// ParseResponse decodes a structured reply and its token usage.
func ParseResponse(result *genai.GenerateContentResponse) (*sitechat.Completion, error) {
	if result == nil {
		return nil, sitechat.Errorf(sitechat.EBACKEND, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, sitechat.Errorf(sitechat.EBACKEND, "gemini returned an empty reply")
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, sitechat.Errorf(sitechat.EBACKEND, "gemini reply is not valid JSON: %v", err)
	}

	completion := &sitechat.Completion{
		Question: r.Question,
		Answer:   r.Answer,
		Sources:  r.Sources,
	}
	if u := result.UsageMetadata; u != nil {
		completion.InputTokens = int(u.PromptTokenCount)
		completion.OutputTokens = int(u.CandidatesTokenCount)
	}
	return completion, nil
}
