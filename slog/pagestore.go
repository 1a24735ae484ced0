package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
)

// Ensure LoggingPageStore implements sitechat.PageStore.
var _ sitechat.PageStore = (*LoggingPageStore)(nil)

// LoggingPageStore wraps a PageStore with debug logging.
type LoggingPageStore struct {
	next   sitechat.PageStore
	logger *slog.Logger
}

// NewLoggingPageStore creates a new LoggingPageStore.
func NewLoggingPageStore(next sitechat.PageStore, logger *slog.Logger) *LoggingPageStore {
	return &LoggingPageStore{next: next, logger: logger}
}

// AddPage delegates to the wrapped store and logs the operation.
func (s *LoggingPageStore) AddPage(ctx context.Context, page *sitechat.Page) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("add page",
			"url", page.URL,
			"chars", len([]rune(page.Content)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AddPage(ctx, page)
}

// ListPages delegates to the wrapped store and logs the operation.
func (s *LoggingPageStore) ListPages(ctx context.Context) (pages []*sitechat.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("list pages",
			"count", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListPages(ctx)
}

// ClearPages delegates to the wrapped store and logs the operation.
func (s *LoggingPageStore) ClearPages(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("clear pages",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ClearPages(ctx)
}
