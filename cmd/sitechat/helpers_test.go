package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/sitechat"
	main "github.com/fwojciec/sitechat/cmd/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/fwojciec/sitechat/goquery"
	"github.com/fwojciec/sitechat/mock"
)

// testSite maps URLs of example.com to HTML.
var testSite = map[string]string{
	"https://example.com/": `<html><head><title>Home</title></head><body>
		<p>Welcome home.</p><a href="/about">About</a><a href="https://other.org/">Elsewhere</a>
	</body></html>`,
	"https://example.com/about": `<html><head><title>About</title></head><body><p>We sell shoes.</p></body></html>`,
}

// pageList is a concurrency-safe in-memory page store.
type pageList struct {
	mu    sync.Mutex
	pages []*sitechat.Page
}

func (l *pageList) store() *mock.PageStore {
	return &mock.PageStore{
		AddPageFn: func(_ context.Context, p *sitechat.Page) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.pages = append(l.pages, p)
			return nil
		},
		ListPagesFn: func(context.Context) ([]*sitechat.Page, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			return append([]*sitechat.Page(nil), l.pages...), nil
		},
		ClearPagesFn: func(context.Context) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.pages = nil
			return nil
		},
	}
}

func (l *pageList) urls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	urls := make([]string, 0, len(l.pages))
	for _, p := range l.pages {
		urls = append(urls, p.URL)
	}
	return urls
}

// testCrawler crawls testSite into pages without touching the network.
func testCrawler(pages sitechat.PageStore) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				html, ok := testSite[url]
				if !ok {
					return "", sitechat.Errorf(sitechat.ENOTFOUND, "HTTP 404 for %s", url)
				}
				return html, nil
			},
		},
		Extractor:    goquery.NewExtractor(),
		LinkSelector: goquery.NewLinkSelector(),
		Pages:        pages,
		RetryDelays:  []time.Duration{},
	}
}

func testDeps(ctx context.Context) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, stdout, stderr
}

// lockedBuffer is a bytes.Buffer safe for concurrent writes and reads.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
