package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentCols = []string{
	"id", "user_id", "order_id", "order_name", "amount", "currency", "status", "payment_key",
	"method", "failure_code", "failure_reason", "approved_at", "created_at", "updated_at",
}

func TestPaymentStore_CreatePayment_DefaultsPending(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	p := &types.Payment{UserID: "u1", OrderID: "order_1", OrderName: "Premium", Amount: 9900, Currency: "KRW"}
	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs("u1", "order_1", "Premium", int64(9900), "KRW", "pending").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p1", now, now))

	require.NoError(t, s.CreatePayment(context.Background(), p))
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, types.PaymentStatusPending, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentStore_GetByOrderID(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM payments WHERE order_id = \$1`).
		WithArgs("order_1").
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow("p1", "u1", "order_1", "Premium", int64(9900), "KRW", types.PaymentStatusPending,
				nil, nil, nil, nil, nil, now, now))

	p, err := s.GetByOrderID(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, int64(9900), p.Amount)
	assert.Nil(t, p.PaymentKey)
	assert.Nil(t, p.ApprovedAt)
}

func TestPaymentStore_Complete(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE payments\s+SET status = 'completed'`).
		WithArgs("order_1", "pk_1", "CARD", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs("u1", string(types.SubscriptionStatusActive), now, now.AddDate(0, 1, 0), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("s1", now))
	mock.ExpectCommit()

	sub := &types.Subscription{UserID: "u1", Status: types.SubscriptionStatusActive, StartDate: now, EndDate: now.AddDate(0, 1, 0)}
	err := s.Complete(context.Background(), "order_1", types.PaymentCompletion{PaymentKey: "pk_1", Method: "CARD", ApprovedAt: now}, sub)
	require.NoError(t, err)
	assert.Equal(t, "s1", sub.ID)
	require.NotNil(t, sub.PaymentID)
	assert.Equal(t, "p1", *sub.PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentStore_Complete_NotPending(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE payments`).
		WithArgs("order_1", "pk", "", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.Complete(context.Background(), "order_1", types.PaymentCompletion{PaymentKey: "pk", ApprovedAt: now}, &types.Subscription{UserID: "u1"})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentStore_Complete_SubscriptionInsertFails(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE payments`).
		WithArgs("order_1", "pk", "", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Complete(context.Background(), "order_1", types.PaymentCompletion{PaymentKey: "pk", ApprovedAt: now}, &types.Subscription{UserID: "u1"})
	assert.EqualError(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentStore_MarkFailed(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)

	mock.ExpectExec(`SET status = 'failed'`).
		WithArgs("order_1", "PAY_PROCESS_CANCELED", "user canceled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`SET status = 'failed'`).
		WithArgs("order_2", "X", "y").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, s.MarkFailed(context.Background(), "order_1", "PAY_PROCESS_CANCELED", "user canceled"))
	assert.ErrorIs(t, s.MarkFailed(context.Background(), "order_2", "X", "y"), store.ErrNotFound)
}

func TestPaymentStore_ListPayments(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)
	now := time.Now().UTC()

	cols := append(append([]string{}, paymentCols...), "total")
	mock.ExpectQuery(`FROM payments WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("completed", 20, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("p1", "u1", "order_1", "Premium", int64(9900), "KRW", types.PaymentStatusCompleted,
				strPtr("pk"), strPtr("CARD"), nil, nil, &now, now, now, int64(1)))

	payments, total, err := s.ListPayments(context.Background(), types.PaymentFilter{Status: types.PaymentStatusCompleted, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, payments, 1)
	assert.Equal(t, "CARD", *payments[0].Method)
}

func TestPaymentStore_Stats(t *testing.T) {
	mock := newMockPool(t)
	s := NewPaymentStore(mock)

	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count", "revenue"}).
			AddRow(types.PaymentStatusCompleted, int64(3), int64(29700)).
			AddRow(types.PaymentStatusFailed, int64(1), int64(0)))

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(29700), stats.TotalRevenue)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[types.PaymentStatusFailed])
}
