package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
)

// Ensure BlogStore implements store.BlogStore.
var _ store.BlogStore = (*BlogStore)(nil)

const blogColumns = `id, title, summary, content, category, keywords, image_url, is_premium,
	views, created_at, updated_at`

// BlogStore implements store.BlogStore for PostgreSQL.
type BlogStore struct {
	db DB
}

// NewBlogStore creates a new BlogStore
func NewBlogStore(db DB) *BlogStore {
	return &BlogStore{db: db}
}

func scanBlog(row pgx.Row, extra ...any) (*types.Blog, error) {
	b := &types.Blog{}
	dest := []any{
		&b.ID, &b.Title, &b.Summary, &b.Content, &b.Category, &b.Keywords, &b.ImageURL,
		&b.IsPremium, &b.Views, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if b.Keywords == nil {
		b.Keywords = []string{}
	}
	return b, nil
}

// GetBlog retrieves a blog post by id.
func (s *BlogStore) GetBlog(ctx context.Context, id string) (*types.Blog, error) {
	b, err := scanBlog(s.db.QueryRow(ctx, `SELECT `+blogColumns+` FROM blog_content WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// ListBlogs returns a page of posts, newest first. Post bodies are omitted.
func (s *BlogStore) ListBlogs(ctx context.Context, filter types.ContentFilter) ([]types.Blog, int, error) {
	w := contentFilterWhere(filter)
	query := `SELECT ` + blogColumns + `, COUNT(*) OVER() AS total FROM blog_content` +
		w.clause() + ` ORDER BY created_at DESC` + w.page(filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []types.Blog{}
	total := 0
	for rows.Next() {
		var count int64
		b, err := scanBlog(rows, &count)
		if err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		b.Content = ""
		total = int(count)
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CreateBlog inserts b and fills its id and timestamps.
func (s *BlogStore) CreateBlog(ctx context.Context, b *types.Blog) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO blog_content (title, summary, content, category, keywords, image_url, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, views, created_at, updated_at`,
		b.Title, b.Summary, b.Content, string(b.Category), b.Keywords, b.ImageURL, b.IsPremium,
	).Scan(&b.ID, &b.Views, &b.CreatedAt, &b.UpdatedAt)
	return mapErr(err)
}

// UpdateBlog writes every editable column of b.
func (s *BlogStore) UpdateBlog(ctx context.Context, b *types.Blog) error {
	err := s.db.QueryRow(ctx, `
		UPDATE blog_content SET
			title = $2, summary = $3, content = $4, category = $5, keywords = $6,
			image_url = $7, is_premium = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.Title, b.Summary, b.Content, string(b.Category), b.Keywords, b.ImageURL, b.IsPremium,
	).Scan(&b.UpdatedAt)
	return mapErr(err)
}

// DeleteBlog removes a blog post.
func (s *BlogStore) DeleteBlog(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM blog_content WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter and returns the new value.
func (s *BlogStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`UPDATE blog_content SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&n)
	return n, mapErr(err)
}

// TotalViews sums views over all posts.
func (s *BlogStore) TotalViews(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(views), 0)::bigint FROM blog_content`).Scan(&n)
	return n, mapErr(err)
}

// TopByViews returns the most read posts.
func (s *BlogStore) TopByViews(ctx context.Context, limit int) ([]types.TopContent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, views FROM blog_content ORDER BY views DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectTop(rows, types.ContentKindBlog)
}
