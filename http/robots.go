package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/sitechat"
	"github.com/temoto/robotstxt"
)

// maxRobotsBytes limits the size of robots.txt responses we will read.
const maxRobotsBytes = 512 << 10

var _ sitechat.RobotsPolicy = (*RobotsChecker)(nil)

// RobotsChecker checks URLs against the robots.txt of their host.
// Each host's robots.txt is fetched once and cached.
// It is safe for concurrent use by multiple goroutines.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a RobotsChecker evaluating rules for userAgent.
// If client is nil, http.DefaultClient is used.
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether robots.txt permits fetching rawURL.
// A robots.txt that is missing or cannot be fetched allows everything.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, sitechat.Errorf(sitechat.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return false, sitechat.Errorf(sitechat.EINVALID, "URL %q has no host", rawURL)
	}

	robots, err := r.robots(ctx, u)
	if err != nil {
		return false, err
	}
	return robots.TestAgent(u.RequestURI(), r.userAgent), nil
}

// robots returns the cached rules for the URL's host, fetching robots.txt
// on first use.
func (r *RobotsChecker) robots(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := strings.ToLower(u.Scheme + "://" + u.Host)

	r.mu.Lock()
	data, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return data, nil
	}

	data, err := r.fetch(ctx, key+"/robots.txt")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		data = &robotstxt.RobotsData{}
	}

	r.mu.Lock()
	r.cache[key] = data
	r.mu.Unlock()
	return data, nil
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("robots: create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("robots: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("robots: read body: %w", err)
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
