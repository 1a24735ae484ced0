package sitechat

import (
	"context"
	"strings"
	"time"
)

// Page represents the extracted text of one crawled URL.
type Page struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // plain text, whitespace-normalized
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if strings.TrimSpace(p.URL) == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// PageStore persists crawled pages keyed by URL.
type PageStore interface {
	// AddPage stores a new page and fills in its ID, ContentHash and CreatedAt.
	// Returns ECONFLICT if a page with the same URL already exists.
	AddPage(ctx context.Context, page *Page) error

	// ListPages returns every stored page in insertion order.
	ListPages(ctx context.Context) ([]*Page, error)

	// ClearPages removes all stored pages.
	ClearPages(ctx context.Context) error
}

// PageMap returns the pages as a mapping from URL to content.
func PageMap(pages []*Page) map[string]string {
	m := make(map[string]string, len(pages))
	for _, p := range pages {
		m[p.URL] = p.Content
	}
	return m
}
