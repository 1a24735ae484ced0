package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/sitechat"
)

// DefaultTimeout is the default time limit for one crawl session.
const DefaultTimeout = time.Hour

// Outcome is the result of a background crawl session.
type Outcome struct {
	Result *Result
	Err    error
}

// Start runs one crawl session on its own goroutine and returns immediately.
// The session is bounded by timeout (DefaultTimeout if zero or less) and by
// ctx. Exactly one Outcome is delivered on the returned channel, which is
// then closed. A panic inside the session is reported as an EINTERNAL error.
func Start(ctx context.Context, c *Crawler, startURL string, allow DomainMatcher, timeout time.Duration, progress ProgressFunc) <-chan Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	done := make(chan Outcome, 1)
	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		done <- run(ctx, c, startURL, allow, progress)
	}()
	return done
}

func run(ctx context.Context, c *Crawler, startURL string, allow DomainMatcher, progress ProgressFunc) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: sitechat.Errorf(sitechat.EINTERNAL, "crawl panicked: %v", r)}
		}
	}()
	out.Result, out.Err = c.Crawl(ctx, startURL, allow, progress)
	return out
}
