// Package crawl walks a single website, extracting the visible text of each
// page into a sitechat.PageStore until a character budget is spent.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/sitechat"
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.001
	// DefaultMaxPages limits the number of pages fetched to prevent runaway crawls.
	DefaultMaxPages = 10000
)

// Crawler walks one site breadth-first. Pages are fetched one at a time,
// so a Crawler must not run two sessions concurrently.
type Crawler struct {
	Fetcher      sitechat.Fetcher
	Extractor    sitechat.Extractor
	LinkSelector sitechat.LinkSelector
	Pages        sitechat.PageStore
	RateLimiter  sitechat.DomainLimiter

	// Optional collaborators.
	Robots       sitechat.RobotsPolicy
	Sitemaps     sitechat.SitemapService
	TokenCounter sitechat.TokenCounter

	// Budget is the maximum number of content characters one session may
	// store. Zero means unlimited.
	Budget      int
	MaxPages    int
	RetryDelays []time.Duration
}

// StopReason tells why a crawl session ended.
type StopReason int

const (
	StopExhausted StopReason = iota
	StopBudget
	StopMaxPages
	StopTimeout
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopBudget:
		return "budget"
	case StopMaxPages:
		return "max_pages"
	case StopTimeout:
		return "timeout"
	case StopCanceled:
		return "canceled"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Result holds the outcome of a crawl session.
type Result struct {
	Visited int // pages fetched or attempted
	Saved   int
	Failed  int // fetch or extraction failures
	Skipped int // store rejections and robots.txt exclusions
	Chars   int // budget total, including a page dropped for overflow
	Tokens  int

	Discovered int // distinct in-domain URLs found, start URL included
	Queued     int // discovered URLs never visited
	Reason     StopReason
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressSaved
	ProgressFailed
	ProgressSkipped
	ProgressBudgetExceeded
	ProgressFinished
)

// ProgressEvent reports progress during a crawl session.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Visited int
	Chars   int
	Error   error
	Result  *Result // set on ProgressFinished
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// session is the state owned by one Crawl call.
type session struct {
	frontier sitechat.URLFrontier
	budget   *Budget
	allow    DomainMatcher
	result   Result
	progress ProgressFunc
}

func (s *session) emit(ev ProgressEvent) {
	if s.progress == nil {
		return
	}
	ev.Visited = s.result.Visited
	ev.Chars = s.budget.Total()
	s.progress(ev)
}

// Crawl replaces the contents of the page store with the pages reachable
// from startURL. Only links accepted by allow are followed; a nil allow
// restricts the crawl to the start URL's host and its subdomains.
//
// The session ends when the frontier is empty, when storing the next page
// would meet or exceed the character budget (that page is not stored), when
// MaxPages pages have been visited, or when ctx is done. An expired context
// deadline returns the partial result with an ETIMEOUT error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, allow DomainMatcher, progress ProgressFunc) (*Result, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, sitechat.Errorf(sitechat.EINVALID, "invalid start URL %q", startURL)
	}
	if allow == nil {
		allow = MatchDomain(start.Hostname())
	}

	if err := c.Pages.ClearPages(ctx); err != nil {
		return nil, fmt.Errorf("clearing pages: %w", err)
	}

	s := &session{
		frontier: NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
		budget:   NewBudget(c.Budget),
		allow:    allow,
		progress: progress,
	}
	s.frontier.Push(startURL)
	s.emit(ProgressEvent{Type: ProgressStarted, URL: startURL})
	c.seedFromSitemap(ctx, s, startURL)

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	s.result.Reason = StopExhausted
	for {
		if ctx.Err() != nil {
			s.result.Reason = stopReason(ctx)
			break
		}
		if s.result.Visited >= maxPages {
			s.result.Reason = StopMaxPages
			break
		}
		link, ok := s.frontier.Pop()
		if !ok {
			break
		}
		if reason, stop := c.visit(ctx, s, link); stop {
			s.result.Reason = reason
			break
		}
	}

	s.result.Chars = s.budget.Total()
	s.result.Discovered = s.frontier.Discovered()
	s.result.Queued = s.frontier.Len()
	s.emit(ProgressEvent{Type: ProgressFinished, Result: &s.result})

	switch s.result.Reason {
	case StopTimeout:
		return &s.result, sitechat.Errorf(sitechat.ETIMEOUT, "crawl stopped after reaching its time limit")
	case StopCanceled:
		return &s.result, ctx.Err()
	}
	return &s.result, nil
}

// visit processes one URL. It returns stop=true with the reason when the
// session must end: the budget is spent or the politeness wait cannot finish
// before the context does.
func (c *Crawler) visit(ctx context.Context, s *session, link string) (reason StopReason, stop bool) {
	if c.Robots != nil {
		if ok, err := c.Robots.Allowed(ctx, link); err == nil && !ok {
			s.result.Skipped++
			s.emit(ProgressEvent{Type: ProgressSkipped, URL: link, Error: sitechat.Errorf(sitechat.EINVALID, "disallowed by robots.txt")})
			return 0, false
		}
	}

	u, err := url.Parse(link)
	if err != nil {
		s.result.Failed++
		s.emit(ProgressEvent{Type: ProgressFailed, URL: link, Error: err})
		return 0, false
	}
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			s.result.Failed++
			s.emit(ProgressEvent{Type: ProgressFailed, URL: link, Error: fmt.Errorf("politeness wait: %w", err)})
			return waitStopReason(ctx)
		}
	}

	s.result.Visited++
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, link, c.Fetcher.Fetch, nil, delays)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false
		}
		s.result.Failed++
		s.emit(ProgressEvent{Type: ProgressFailed, URL: link, Error: err})
		return 0, false
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		s.result.Failed++
		s.emit(ProgressEvent{Type: ProgressFailed, URL: link, Error: err})
		return 0, false
	}

	n := utf8.RuneCountInString(extracted.Text)
	if s.budget.Exceeds(n) {
		s.budget.Add(n)
		s.emit(ProgressEvent{Type: ProgressBudgetExceeded, URL: link})
		return StopBudget, true
	}

	page := &sitechat.Page{URL: link, Title: extracted.Title, Content: extracted.Text}
	if err := c.Pages.AddPage(ctx, page); err != nil {
		s.result.Skipped++
		s.emit(ProgressEvent{Type: ProgressSkipped, URL: link, Error: err})
	} else {
		s.budget.Add(n)
		s.result.Saved++
		if c.TokenCounter != nil {
			if tokens, err := c.TokenCounter.CountTokens(ctx, page.Content); err == nil {
				s.result.Tokens += tokens
			}
		}
		s.emit(ProgressEvent{Type: ProgressSaved, URL: link})
	}

	// A page whose links cannot be extracted contributes no new links.
	links, err := c.LinkSelector.ExtractLinks(html, link)
	if err != nil {
		return 0, false
	}
	for _, l := range links {
		if s.allow(l) {
			s.frontier.Push(l)
		}
	}
	return 0, false
}

// seedFromSitemap pushes sitemap URLs that belong to the site.
// Sitemap failures are reported and otherwise ignored.
func (c *Crawler) seedFromSitemap(ctx context.Context, s *session, startURL string) {
	if c.Sitemaps == nil {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, startURL)
	if err != nil {
		s.emit(ProgressEvent{Type: ProgressFailed, URL: startURL, Error: fmt.Errorf("sitemap discovery: %w", err)})
		return
	}
	for _, u := range urls {
		if s.allow(u) {
			s.frontier.Push(u)
		}
	}
}

// waitStopReason classifies a failed politeness wait. A limiter may give up
// before the context is done when the wait would outlast its deadline, so a
// context with a deadline ends the session as a timeout. Any other failure
// only costs the current URL.
func waitStopReason(ctx context.Context) (StopReason, bool) {
	if ctx.Err() != nil {
		return stopReason(ctx), true
	}
	if _, ok := ctx.Deadline(); ok {
		return StopTimeout, true
	}
	return 0, false
}

func stopReason(ctx context.Context) StopReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return StopTimeout
	}
	return StopCanceled
}
