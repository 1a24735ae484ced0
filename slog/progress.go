package slog

import (
	"log/slog"

	"github.com/fwojciec/sitechat/crawl"
)

// CrawlProgress returns a crawl.ProgressFunc that writes each event to logger.
// Failures and skipped pages are warnings; they never stop the crawl.
func CrawlProgress(logger *slog.Logger) crawl.ProgressFunc {
	return func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressStarted:
			logger.Info("crawl started", "url", ev.URL)
		case crawl.ProgressSaved:
			logger.Debug("page saved", "url", ev.URL, "visited", ev.Visited, "chars", ev.Chars)
		case crawl.ProgressFailed:
			logger.Warn("page failed", "url", ev.URL, "err", ev.Error)
		case crawl.ProgressSkipped:
			logger.Warn("page skipped", "url", ev.URL, "err", ev.Error)
		case crawl.ProgressBudgetExceeded:
			logger.Info("content budget reached", "url", ev.URL, "chars", ev.Chars)
		case crawl.ProgressFinished:
			r := ev.Result
			if r == nil {
				return
			}
			logger.Info("crawl finished",
				"reason", r.Reason.String(),
				"visited", r.Visited,
				"saved", r.Saved,
				"failed", r.Failed,
				"skipped", r.Skipped,
				"discovered", r.Discovered,
				"queued", r.Queued,
				"chars", crawl.FormatChars(r.Chars),
				"tokens", crawl.FormatTokens(r.Tokens),
			)
		}
	}
}
