package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
)

var _ store.PaymentStore = (*PaymentStore)(nil)

const paymentColumns = `id, user_id::text, order_id, order_name, amount, currency, status, payment_key,
	method, failure_code, failure_reason, approved_at, created_at, updated_at`

// PaymentStore implements store.PaymentStore for PostgreSQL.
type PaymentStore struct {
	db DB
}

func NewPaymentStore(db DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func scanPayment(row pgx.Row, extra ...any) (*types.Payment, error) {
	p := &types.Payment{}
	dest := []any{
		&p.ID, &p.UserID, &p.OrderID, &p.OrderName, &p.Amount, &p.Currency, &p.Status,
		&p.PaymentKey, &p.Method, &p.FailureCode, &p.FailureReason, &p.ApprovedAt,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePayment inserts a pending payment and fills its id and timestamps.
func (s *PaymentStore) CreatePayment(ctx context.Context, p *types.Payment) error {
	if p.Status == "" {
		p.Status = types.PaymentStatusPending
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO payments (user_id, order_id, order_name, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.OrderID, p.OrderName, p.Amount, p.Currency, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

// GetByOrderID retrieves a payment by its gateway order id.
func (s *PaymentStore) GetByOrderID(ctx context.Context, orderID string) (*types.Payment, error) {
	p, err := scanPayment(s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Complete approves the payment and records the subscription atomically.
func (s *PaymentStore) Complete(ctx context.Context, orderID string, c types.PaymentCompletion, sub *types.Subscription) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return mapErr(err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.GetLogger().Errorw("Failed to roll back payment completion", "order_id", orderID, "error", rbErr)
			}
		}
	}()

	var paymentID string
	err = tx.QueryRow(ctx, `
		UPDATE payments
		SET status = 'completed', payment_key = $2, method = $3, approved_at = $4, updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'
		RETURNING id`,
		orderID, c.PaymentKey, c.Method, c.ApprovedAt,
	).Scan(&paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: payment %s is not pending", store.ErrConflict, orderID)
			return err
		}
		err = mapErr(err)
		return err
	}

	sub.PaymentID = &paymentID
	if err = insertSubscription(ctx, tx, sub); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = mapErr(err)
		return err
	}
	return nil
}

// MarkFailed records a failure reason on a pending payment.
func (s *PaymentStore) MarkFailed(ctx context.Context, orderID, code, reason string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE payments
		SET status = 'failed', failure_code = $2, failure_reason = $3, updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'`,
		orderID, code, reason)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListPayments returns a page of payments, newest first, and the total count.
func (s *PaymentStore) ListPayments(ctx context.Context, filter types.PaymentFilter) ([]types.Payment, int, error) {
	var w whereBuilder
	if filter.Status != "" {
		w.add("status = $%d", string(filter.Status))
	}
	if filter.Search != "" {
		w.add("(order_id ILIKE $%[1]d OR order_name ILIKE $%[1]d OR user_id::text ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	query := `SELECT ` + paymentColumns + `, COUNT(*) OVER() AS total FROM payments` +
		w.clause() + ` ORDER BY created_at DESC` + w.page(filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []types.Payment{}
	total := 0
	for rows.Next() {
		var count int64
		p, err := scanPayment(rows, &count)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		total = int(count)
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats counts payments per status and sums completed amounts.
func (s *PaymentStore) Stats(ctx context.Context) (*types.PaymentStats, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, COUNT(*)::bigint,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0)::bigint
		FROM payments
		GROUP BY status`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	stats := &types.PaymentStats{ByStatus: make(map[types.PaymentStatus]int64)}
	for rows.Next() {
		var status types.PaymentStatus
		var count, revenue int64
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, fmt.Errorf("scan payment stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
		stats.TotalRevenue += revenue
	}
	return stats, rows.Err()
}
