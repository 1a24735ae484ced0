package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var _ sitechat.Asker = (*Asker)(nil)

// Asker is a mock implementation of sitechat.Asker.
type Asker struct {
	AskFn        func(ctx context.Context, question string) (*sitechat.AnsweredResult, error)
	SourceInfoFn func(ctx context.Context) (map[string]string, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*sitechat.AnsweredResult, error) {
	return a.AskFn(ctx, question)
}

func (a *Asker) SourceInfo(ctx context.Context) (map[string]string, error) {
	return a.SourceInfoFn(ctx)
}

var _ sitechat.Completer = (*Completer)(nil)

// Completer is a mock implementation of sitechat.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, system, user string) (*sitechat.Completion, error)
}

func (c *Completer) Complete(ctx context.Context, system, user string) (*sitechat.Completion, error) {
	return c.CompleteFn(ctx, system, user)
}
