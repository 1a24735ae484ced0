// Package rod provides a sitechat.Fetcher that renders pages in headless
// Chrome, for sites whose text only appears after JavaScript runs.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/sitechat"
)

// DefaultFetchTimeout bounds loading and rendering a single page.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements sitechat.Fetcher at compile time.
var _ sitechat.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *Browser
	timeout time.Duration
	allow   func(rawURL string) bool

	browserOpts []BrowserOption
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-page timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRedirectCheck makes Fetch fail with EINVALID when the page ends up
// at a URL that allow rejects, such as after a redirect to another site.
func WithRedirectCheck(allow func(rawURL string) bool) FetcherOption {
	return func(f *Fetcher) {
		f.allow = allow
	}
}

// WithBrowserOptions passes options to the Browser the Fetcher launches.
func WithBrowserOptions(opts ...BrowserOption) FetcherOption {
	return func(f *Fetcher) {
		f.browserOpts = append(f.browserOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout <= 0 {
		f.timeout = DefaultFetchTimeout
	}

	browser, err := NewBrowser(f.browserOpts...)
	if err != nil {
		return nil, err
	}
	f.browser = browser
	return f, nil
}

// Fetch navigates to the URL and returns the HTML after the load event.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.browser.Closed() {
		return "", sitechat.Errorf(sitechat.EINVALID, "fetcher is closed")
	}

	page, err := f.browser.Page()
	if err != nil {
		return "", err
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if f.allow != nil {
		info, err := page.Info()
		if err != nil {
			return "", err
		}
		if !f.allow(info.URL) {
			return "", sitechat.Errorf(sitechat.EINVALID, "%s redirects outside the site to %s", url, info.URL)
		}
	}
	return page.HTML()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.browser.PID()
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
