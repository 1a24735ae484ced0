package sitechat

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// RobotsPolicy reports whether a crawler may fetch a URL.
type RobotsPolicy interface {
	// Allowed returns true if robots.txt rules for the URL's host permit fetching it.
	Allowed(ctx context.Context, url string) (bool, error)
}
