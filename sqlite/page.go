package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ sitechat.PageStore = (*PageStore)(nil)

// PageStore implements sitechat.PageStore using SQLite.
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// AddPage stores a new page. The ID, content hash and creation time are
// assigned by the store. A page with an already stored URL is rejected
// with ECONFLICT.
func (s *PageStore) AddPage(ctx context.Context, page *sitechat.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}

	id := uuid.New().String()
	createdAt := time.Now().UTC()
	hash := hashContent(page.Content)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, url, title, content, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, page.URL, page.Title, page.Content, hash, createdAt.Format(time.RFC3339Nano))
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return sitechat.Errorf(sitechat.ECONFLICT, "page %q already exists", page.URL)
	}
	if err != nil {
		return err
	}

	page.ID = id
	page.ContentHash = hash
	page.CreatedAt = createdAt
	return nil
}

// ListPages returns every stored page in insertion order.
func (s *PageStore) ListPages(ctx context.Context) ([]*sitechat.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, content, content_hash, created_at
		FROM pages
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*sitechat.Page
	for rows.Next() {
		var page sitechat.Page
		var createdAt string

		if err := rows.Scan(&page.ID, &page.URL, &page.Title, &page.Content, &page.ContentHash, &createdAt); err != nil {
			return nil, err
		}

		if page.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

// ClearPages removes every stored page.
func (s *PageStore) ClearPages(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pages")
	return err
}
