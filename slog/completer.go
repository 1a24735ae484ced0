package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
)

// Ensure LoggingCompleter implements sitechat.Completer.
var _ sitechat.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging of token usage.
type LoggingCompleter struct {
	next   sitechat.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next sitechat.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the call.
// Prompt text is not logged.
func (c *LoggingCompleter) Complete(ctx context.Context, system, user string) (completion *sitechat.Completion, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"prompt_chars", len(system) + len(user),
			"duration", time.Since(begin),
		}
		if completion != nil {
			attrs = append(attrs,
				"input_tokens", completion.InputTokens,
				"output_tokens", completion.OutputTokens,
				"sources", len(completion.Sources),
			)
		}
		if err != nil {
			c.logger.Error("completion", append(attrs, "err", err)...)
			return
		}
		c.logger.Info("completion", attrs...)
	}(time.Now())
	return c.next.Complete(ctx, system, user)
}
