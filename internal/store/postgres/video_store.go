package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
)

// Ensure VideoStore implements store.VideoStore.
var _ store.VideoStore = (*VideoStore)(nil)

const videoColumns = `id, title, summary, description, category, tab, keywords, youtube_url,
	youtube_id, thumbnail, image_url, is_premium, view_count, created_at, updated_at`

// VideoStore implements store.VideoStore for PostgreSQL.
type VideoStore struct {
	db DB
}

// NewVideoStore creates a new VideoStore
func NewVideoStore(db DB) *VideoStore {
	return &VideoStore{db: db}
}

func scanVideo(row pgx.Row, extra ...any) (*types.Video, error) {
	v := &types.Video{}
	dest := []any{
		&v.ID, &v.Title, &v.Summary, &v.Description, &v.Category, &v.Tab, &v.Keywords,
		&v.YouTubeURL, &v.YouTubeID, &v.Thumbnail, &v.ImageURL, &v.IsPremium, &v.ViewCount,
		&v.CreatedAt, &v.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	return v, nil
}

func collectVideos(rows pgx.Rows) ([]types.Video, error) {
	defer rows.Close()
	out := []types.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// GetVideo retrieves a video by id.
func (s *VideoStore) GetVideo(ctx context.Context, id string) (*types.Video, error) {
	row := s.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM video_content WHERE id = $1`, id)
	v, err := scanVideo(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

// ListVideos returns a page of videos, newest first, and the total match count.
func (s *VideoStore) ListVideos(ctx context.Context, filter types.ContentFilter) ([]types.Video, int, error) {
	w := contentFilterWhere(filter)
	query := `SELECT ` + videoColumns + `, COUNT(*) OVER() AS total FROM video_content` +
		w.clause() + ` ORDER BY created_at DESC` + w.page(filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []types.Video{}
	total := 0
	for rows.Next() {
		var count int64
		v, err := scanVideo(rows, &count)
		if err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		total = int(count)
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListKeywords counts video keywords, optionally within one category.
func (s *VideoStore) ListKeywords(ctx context.Context, category types.ContentCategory) ([]types.KeywordCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT k, COUNT(*)::bigint
		FROM video_content, unnest(keywords) AS k
		WHERE $1 = '' OR category = $1
		GROUP BY k
		ORDER BY k`, string(category))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []types.KeywordCount{}
	for rows.Next() {
		var kc types.KeywordCount
		var n int64
		if err := rows.Scan(&kc.Keyword, &n); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		kc.Count = int(n)
		out = append(out, kc)
	}
	return out, rows.Err()
}

// ListCandidates returns the recommendation pool for a video.
func (s *VideoStore) ListCandidates(ctx context.Context, excludeID string, limit int) ([]types.Video, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+videoColumns+` FROM video_content WHERE id <> $1 ORDER BY created_at DESC LIMIT $2`,
		excludeID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectVideos(rows)
}

// GetVideosByIDs loads the given videos in no particular order.
func (s *VideoStore) GetVideosByIDs(ctx context.Context, ids []string) ([]types.Video, error) {
	if len(ids) == 0 {
		return []types.Video{}, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+videoColumns+` FROM video_content WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectVideos(rows)
}

// ListPopular returns the most viewed videos.
func (s *VideoStore) ListPopular(ctx context.Context, limit int) ([]types.Video, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+videoColumns+` FROM video_content ORDER BY view_count DESC, created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectVideos(rows)
}

// ListPreferred matches keywords case-insensitively; keywords are expected
// lowercased.
func (s *VideoStore) ListPreferred(ctx context.Context, excludeIDs, categories, keywords []string, limit int) ([]types.Video, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	if categories == nil {
		categories = []string{}
	}
	if keywords == nil {
		keywords = []string{}
	}
	query := `SELECT ` + videoColumns + ` FROM video_content
		WHERE NOT (id = ANY($1::uuid[]))
		  AND (category = ANY($2::text[])
		       OR (cardinality($3::text[]) > 0
		           AND ARRAY(SELECT lower(k) FROM unnest(keywords) AS k) @> $3::text[]))
		LIMIT $4`
	rows, err := s.db.Query(ctx, query, excludeIDs, categories, keywords, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectVideos(rows)
}

// CreateVideo inserts video and fills its id and timestamps.
func (s *VideoStore) CreateVideo(ctx context.Context, v *types.Video) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO video_content
			(title, summary, description, category, tab, keywords, youtube_url, youtube_id,
			 thumbnail, image_url, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, view_count, created_at, updated_at`,
		v.Title, v.Summary, v.Description, string(v.Category), v.Tab, v.Keywords, v.YouTubeURL,
		v.YouTubeID, v.Thumbnail, v.ImageURL, v.IsPremium,
	).Scan(&v.ID, &v.ViewCount, &v.CreatedAt, &v.UpdatedAt)
	return mapErr(err)
}

// UpdateVideo writes every editable column of v.
func (s *VideoStore) UpdateVideo(ctx context.Context, v *types.Video) error {
	err := s.db.QueryRow(ctx, `
		UPDATE video_content SET
			title = $2, summary = $3, description = $4, category = $5, keywords = $6,
			youtube_url = $7, youtube_id = $8, thumbnail = $9, image_url = $10,
			is_premium = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		v.ID, v.Title, v.Summary, v.Description, string(v.Category), v.Keywords,
		v.YouTubeURL, v.YouTubeID, v.Thumbnail, v.ImageURL, v.IsPremium,
	).Scan(&v.UpdatedAt)
	return mapErr(err)
}

// DeleteVideo removes a video.
func (s *VideoStore) DeleteVideo(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM video_content WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter and returns the new value.
func (s *VideoStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`UPDATE video_content SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&n)
	return n, mapErr(err)
}

// TotalViews sums view_count over all videos.
func (s *VideoStore) TotalViews(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(view_count), 0)::bigint FROM video_content`).Scan(&n)
	return n, mapErr(err)
}

// TopByViews returns the most viewed videos for the dashboard chart.
func (s *VideoStore) TopByViews(ctx context.Context, limit int) ([]types.TopContent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, view_count FROM video_content ORDER BY view_count DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectTop(rows, types.ContentKindVideo)
}

func collectTop(rows pgx.Rows, kind types.ContentKind) ([]types.TopContent, error) {
	defer rows.Close()
	out := []types.TopContent{}
	for rows.Next() {
		t := types.TopContent{Kind: kind}
		if err := rows.Scan(&t.ID, &t.Title, &t.Views); err != nil {
			return nil, fmt.Errorf("scan top content: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
