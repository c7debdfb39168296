package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
)

var _ store.SubscriptionStore = (*SubscriptionStore)(nil)

const subscriptionColumns = `id, user_id::text, status, start_date, end_date, payment_id::text, created_at`

// SubscriptionStore implements store.SubscriptionStore for PostgreSQL.
type SubscriptionStore struct {
	db DB
}

func NewSubscriptionStore(db DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func scanSubscription(row pgx.Row) (*types.Subscription, error) {
	sub := &types.Subscription{}
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Status, &sub.StartDate, &sub.EndDate, &sub.PaymentID, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetLatestByUser returns the user's most recently created subscription.
func (s *SubscriptionStore) GetLatestByUser(ctx context.Context, userID string) (*types.Subscription, error) {
	sub, err := scanSubscription(s.db.QueryRow(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID))
	if err != nil {
		return nil, mapErr(err)
	}
	return sub, nil
}

// GetSubscription retrieves a subscription by id.
func (s *SubscriptionStore) GetSubscription(ctx context.Context, id string) (*types.Subscription, error) {
	sub, err := scanSubscription(s.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return sub, nil
}

// CreateSubscription inserts sub and fills its id and created_at.
func (s *SubscriptionStore) CreateSubscription(ctx context.Context, sub *types.Subscription) error {
	return insertSubscription(ctx, s.db, sub)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSubscription(ctx context.Context, q queryRower, sub *types.Subscription) error {
	err := q.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, status, start_date, end_date, payment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		sub.UserID, string(sub.Status), sub.StartDate, sub.EndDate, sub.PaymentID,
	).Scan(&sub.ID, &sub.CreatedAt)
	return mapErr(err)
}

// UpdateStatus sets the status of a subscription.
func (s *SubscriptionStore) UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ExpireDue flips lapsed active subscriptions to expired.
func (s *SubscriptionStore) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE subscriptions SET status = 'expired'
		WHERE status = 'active' AND end_date <= $1
		RETURNING user_id::text`, now)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired subscription: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// ActiveUntil returns the latest end date per user among active subscriptions.
func (s *SubscriptionStore) ActiveUntil(ctx context.Context, now time.Time) (map[string]time.Time, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id::text, MAX(end_date)
		FROM subscriptions
		WHERE status = 'active' AND end_date > $1
		GROUP BY user_id`, now)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var end time.Time
		if err := rows.Scan(&id, &end); err != nil {
			return nil, fmt.Errorf("scan active subscription: %w", err)
		}
		out[id] = end
	}
	return out, rows.Err()
}
