package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
)

var _ store.ViewHistoryStore = (*ViewHistoryStore)(nil)

// ViewHistoryStore implements store.ViewHistoryStore for PostgreSQL.
type ViewHistoryStore struct {
	db DB
}

func NewViewHistoryStore(db DB) *ViewHistoryStore {
	return &ViewHistoryStore{db: db}
}

// RecordView appends a history row.
func (s *ViewHistoryStore) RecordView(ctx context.Context, userID, videoID string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_view_history (user_id, video_id, viewed_at) VALUES ($1, $2, $3)`,
		userID, videoID, at)
	return mapErr(err)
}

// RecentVideoIDs returns the most recently viewed video ids, newest first.
// Repeat views are returned as separate entries.
func (s *ViewHistoryStore) RecentVideoIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT video_id::text FROM user_view_history
		WHERE user_id = $1
		ORDER BY viewed_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan view history: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// VisitsByDate groups views by UTC calendar day.
func (s *ViewHistoryStore) VisitsByDate(ctx context.Context, since time.Time) ([]types.DailyCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT to_char(viewed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)::bigint
		FROM user_view_history
		WHERE viewed_at >= $1
		GROUP BY day
		ORDER BY day`, since)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []types.DailyCount{}
	for rows.Next() {
		var d types.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan visits: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
