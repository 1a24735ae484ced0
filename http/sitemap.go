package http

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitechat"
	"github.com/temoto/robotstxt"
)

// Sitemap limits. The sitemaps.org protocol caps a file at 50,000 URLs and
// 50MB uncompressed.
const (
	DefaultMaxSitemapURLs = 50000
	maxSitemapBytes       = 50 << 20
	maxSitemapDepth       = 3
)

// Ensure SitemapService implements sitechat.SitemapService.
var _ sitechat.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemaps over HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
	maxURLs   int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapUserAgent sets the User-Agent header for robots.txt and sitemap requests.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(s *SitemapService) {
		s.userAgent = ua
	}
}

// WithMaxURLs caps the number of URLs returned by one discovery.
func WithMaxURLs(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxURLs = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{
		client:    client,
		userAgent: DefaultUserAgent,
		maxURLs:   DefaultMaxSitemapURLs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's
// host, in sitemap order without duplicates. Sitemaps named in robots.txt
// are used when present, otherwise /sitemap.xml. Sitemap indexes are
// followed; gzipped sitemaps are accepted.
//
// A sitemap that cannot be fetched or parsed is skipped. An error is
// returned only when ctx ends or when every sitemap failed.
//
// When baseURL has a non-root path, only URLs under that path are returned.
// Returns an empty slice (not nil) if nothing is found.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	fallbackURL := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})

	d := &discovery{
		svc:      s,
		prefix:   pathPrefix(base.Path),
		sitemaps: make(map[string]bool),
		urls:     make(map[string]bool),
		found:    []string{},
	}

	locations := s.robotsSitemaps(ctx, robotsURL.String())
	if len(locations) == 0 {
		locations = []string{fallbackURL.String()}
	}

	var lastErr error
	ok := 0
	for _, loc := range locations {
		if err := d.visit(ctx, loc, 0); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		ok++
	}

	// A missing fallback sitemap.xml just means the site has none.
	if ok == 0 && lastErr != nil && sitechat.ErrorCode(lastErr) != sitechat.ENOTFOUND {
		return nil, lastErr
	}
	return d.found, nil
}

// discovery holds the state of one DiscoverURLs call.
type discovery struct {
	svc      *SitemapService
	prefix   string
	sitemaps map[string]bool
	urls     map[string]bool
	found    []string
}

func (d *discovery) full() bool {
	return d.svc.maxURLs > 0 && len(d.found) >= d.svc.maxURLs
}

// visit reads one sitemap or sitemap index.
func (d *discovery) visit(ctx context.Context, loc string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.sitemaps[loc] || depth > maxSitemapDepth || d.full() {
		return nil
	}
	d.sitemaps[loc] = true

	doc, err := d.svc.fetchSitemap(ctx, loc)
	if err != nil {
		return err
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap %s", loc)
	}

	if root.Tag == "sitemapindex" {
		for _, child := range locs(root, "sitemap") {
			// Broken child sitemaps are skipped.
			if err := d.visit(ctx, child, depth+1); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
		return nil
	}

	for _, u := range locs(root, "url") {
		if d.full() {
			break
		}
		if d.urls[u] || !underPrefix(u, d.prefix) {
			continue
		}
		d.urls[u] = true
		d.found = append(d.found, u)
	}
	return nil
}

// locs returns the trimmed, non-empty <loc> values of root's children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// robotsSitemaps returns the Sitemap directives of robots.txt, or nil when
// it is missing or unreadable.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) []string {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxRobotsBytes))
	if err != nil {
		return nil
	}
	robots, err := robotstxt.FromBytes(data)
	if err != nil {
		return nil
	}

	var out []string
	for _, u := range robots.Sitemaps {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// fetchSitemap downloads and parses one sitemap document.
func (s *SitemapService) fetchSitemap(ctx context.Context, loc string) (*etree.Document, error) {
	body, err := s.get(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(loc), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("decompressing sitemap %s: %w", loc, err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(io.LimitReader(r, maxSitemapBytes)); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", loc, err)
	}
	return doc, nil
}

// get issues a GET request and returns the body of a 200 response.
// A 404 or 410 is reported as ENOTFOUND.
func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, sitechat.Errorf(sitechat.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, target)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
}

// pathPrefix normalizes a base path to a directory prefix; the root path
// yields "" (no filtering).
func pathPrefix(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// underPrefix reports whether rawURL's path lies under prefix. The prefix
// /docs/ matches /docs/ and /docs/intro but not /documentation.
func underPrefix(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, prefix) || u.Path+"/" == prefix
}
