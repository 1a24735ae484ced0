// Package answer turns stored pages into answers: it validates questions,
// assembles the page context and asks the answering backend.
package answer

import (
	"context"
	"errors"

	"github.com/fwojciec/sitechat"
)

// SystemInstruction is the fixed instruction sent with every question.
const SystemInstruction = `You are a helpful assistant that answers questions about a website.
Answer the question using only the information provided. Each piece of information is
preceded by its source label in square brackets. If the information does not contain
the answer, say that you do not know. Answer in the same language as the question.
Return the question, your answer, and the list of source labels (without brackets)
of the information you used.`

// Synthesizer produces an answer from a question and a context block using
// a language model backend.
type Synthesizer struct {
	Completer sitechat.Completer
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(c sitechat.Completer) *Synthesizer {
	return &Synthesizer{Completer: c}
}

// Synthesize makes one backend call. Any backend failure is returned as
// EBACKEND; the call is not retried.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextBlock string) (*sitechat.AnsweredResult, error) {
	completion, err := s.Completer.Complete(ctx, SystemInstruction, BuildUserMessage(question, contextBlock))
	if err != nil {
		return nil, backendError(err)
	} else if completion == nil {
		return nil, sitechat.Errorf(sitechat.EBACKEND, "answering backend returned no reply")
	}

	result := &sitechat.AnsweredResult{
		Question: completion.Question,
		Answer:   completion.Answer,
		Sources:  completion.Sources,
		Usage: sitechat.Usage{
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
		},
	}
	if result.Question == "" {
		result.Question = question
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}
	return result, nil
}

// BuildUserMessage formats the question and its supporting information.
func BuildUserMessage(question, contextBlock string) string {
	return "Question: " + question + "\n\nInformation: " + contextBlock
}

func backendError(err error) error {
	if sitechat.ErrorCode(err) == sitechat.EBACKEND {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return sitechat.Errorf(sitechat.EBACKEND, "answering backend timed out")
	}
	return sitechat.Errorf(sitechat.EBACKEND, "answering backend failed: %v", err)
}
