package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var _ sitechat.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of sitechat.PageStore.
type PageStore struct {
	AddPageFn    func(ctx context.Context, page *sitechat.Page) error
	ListPagesFn  func(ctx context.Context) ([]*sitechat.Page, error)
	ClearPagesFn func(ctx context.Context) error
}

func (s *PageStore) AddPage(ctx context.Context, page *sitechat.Page) error {
	return s.AddPageFn(ctx, page)
}

func (s *PageStore) ListPages(ctx context.Context) ([]*sitechat.Page, error) {
	return s.ListPagesFn(ctx)
}

func (s *PageStore) ClearPages(ctx context.Context) error {
	return s.ClearPagesFn(ctx)
}
