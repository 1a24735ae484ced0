package crawl_test

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/mock"
)

// noRetry disables fetch retries in tests.
var noRetry = []time.Duration{}

// fakePage is a page of a fake site: its visible text and outgoing links.
type fakePage struct {
	text  string
	links []string
}

// fakeSite serves pages from memory. The "HTML" handed to the extractor and
// link selector is the page URL itself, which they use to look the page up.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	fetches map[string]int
}

func newFakeSite(pages map[string]fakePage) *fakeSite {
	return &fakeSite{pages: pages, fetches: make(map[string]int)}
}

func (s *fakeSite) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.fetches[url]++
			if _, ok := s.pages[url]; !ok {
				return "", sitechat.Errorf(sitechat.ENOTFOUND, "HTTP 404 for %s", url)
			}
			return url, nil
		},
	}
}

func (s *fakeSite) extractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*sitechat.ExtractResult, error) {
			return &sitechat.ExtractResult{Text: s.pages[html].text}, nil
		},
	}
}

func (s *fakeSite) linkSelector() *mock.LinkSelector {
	return &mock.LinkSelector{
		ExtractLinksFn: func(html string, _ string) ([]string, error) {
			return s.pages[html].links, nil
		},
	}
}

func (s *fakeSite) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[url]
}

// memStore is an in-memory page store that rejects duplicate URLs.
type memStore struct {
	mu      sync.Mutex
	pages   []*sitechat.Page
	clears  int
	addErrs map[string]error
}

func (m *memStore) mock() *mock.PageStore {
	return &mock.PageStore{
		AddPageFn: func(_ context.Context, p *sitechat.Page) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			if err := m.addErrs[p.URL]; err != nil {
				return err
			}
			for _, existing := range m.pages {
				if existing.URL == p.URL {
					return sitechat.Errorf(sitechat.ECONFLICT, "page %q already exists", p.URL)
				}
			}
			m.pages = append(m.pages, p)
			return nil
		},
		ListPagesFn: func(_ context.Context) ([]*sitechat.Page, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return append([]*sitechat.Page(nil), m.pages...), nil
		},
		ClearPagesFn: func(_ context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.pages = nil
			m.clears++
			return nil
		},
	}
}

func (m *memStore) urls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.pages))
	for _, p := range m.pages {
		urls = append(urls, p.URL)
	}
	return urls
}
