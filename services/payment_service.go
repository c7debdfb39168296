package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/payments/toss"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/pkg/valueobjects"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
)

const (
	orderIDSuffixLength = 9
	base36Alphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
	defaultOrderName    = "Jungian Journals Premium"
	defaultPriceKRW     = 9900
)

// PaymentGateway confirms payments authorized in the browser widget.
type PaymentGateway interface {
	Confirm(ctx context.Context, req toss.ConfirmRequest) (*toss.Payment, error)
}

// GenerateOrderID returns order_{unix_ms}_{9 base36 chars}. intn must be
// safe for concurrent use when shared between requests; rand.IntN is.
func GenerateOrderID(now time.Time, intn func(n int) int) string {
	var b strings.Builder
	for i := 0; i < orderIDSuffixLength; i++ {
		b.WriteByte(base36Alphabet[intn(len(base36Alphabet))])
	}
	return fmt.Sprintf("order_%d_%s", now.UnixMilli(), b.String())
}

// SubscriptionMonths maps a paid amount in KRW to the months it buys.
func SubscriptionMonths(amount int64) int {
	switch {
	case amount >= 90000:
		return 12
	case amount >= 50000:
		return 6
	case amount >= 25000:
		return 3
	default:
		return 1
	}
}

// PaymentService runs the TossPayments checkout flow.
type PaymentService struct {
	payments    store.PaymentStore
	gateway     PaymentGateway
	directory   UserDirectory
	email       types.EmailService
	jobs        JobSubmitter
	publisher   types.ActivityPublisher
	cfg         config.PaymentConfig
	price       *valueobjects.Money
	frontendURL string
	logger      *zap.SugaredLogger
	now         func() time.Time
	intn        func(n int) int
}

// PaymentServiceDeps groups the collaborators of PaymentService. Directory,
// Email, Jobs and Publisher are optional.
type PaymentServiceDeps struct {
	Payments  store.PaymentStore
	Gateway   PaymentGateway
	Directory UserDirectory
	Email     types.EmailService
	Jobs      JobSubmitter
	Publisher types.ActivityPublisher
}

// NewPaymentService validates the configured price and builds the service.
func NewPaymentService(deps PaymentServiceDeps, cfg config.PaymentConfig, frontendURL string) (*PaymentService, error) {
	if cfg.PriceKRW <= 0 {
		cfg.PriceKRW = defaultPriceKRW
	}
	if cfg.OrderName == "" {
		cfg.OrderName = defaultOrderName
	}
	price, err := valueobjects.NewMoneyFromMinor(cfg.PriceKRW, valueobjects.KRW)
	if err != nil {
		return nil, fmt.Errorf("invalid premium price: %w", err)
	}
	return &PaymentService{
		payments:    deps.Payments,
		gateway:     deps.Gateway,
		directory:   deps.Directory,
		email:       deps.Email,
		jobs:        deps.Jobs,
		publisher:   deps.Publisher,
		cfg:         cfg,
		price:       price,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.GetLogger().Named("payments"),
		now:         time.Now,
		intn:        rand.IntN,
	}, nil
}

// PrepareCheckout records a pending order and returns what the payment
// widget needs to start it.
func (s *PaymentService) PrepareCheckout(ctx context.Context, userID string) (*types.CheckoutSession, error) {
	now := s.now().UTC()
	payment := &types.Payment{
		UserID:    userID,
		OrderID:   GenerateOrderID(now, s.intn),
		OrderName: s.cfg.OrderName,
		Amount:    s.price.Minor(),
		Currency:  string(s.price.Currency()),
		Status:    types.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	s.logger.Infow("Checkout prepared", "orderId", payment.OrderID, "userID", userID, "amount", s.price.String())
	return &types.CheckoutSession{
		ClientKey:   s.cfg.TossClientKey,
		OrderID:     payment.OrderID,
		OrderName:   payment.OrderName,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		CustomerKey: userID,
		SuccessURL:  s.frontendURL + "/payment/success",
		FailURL:     s.frontendURL + "/payment/fail",
	}, nil
}

// loadOwnPayment fetches an order and checks it belongs to userID.
func (s *PaymentService) loadOwnPayment(ctx context.Context, userID, orderID string) (*types.Payment, error) {
	payment, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("payment", orderID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if payment.UserID != userID {
		return nil, apperrors.Forbidden("Not allowed to access this order", "order belongs to another user")
	}
	return payment, nil
}

// ConfirmPayment approves a pending order with the gateway, then grants the
// subscription, mirrors the premium flag into Supabase, queues the receipt
// and publishes the activity.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID, email string, req types.ConfirmPaymentRequest) (*types.PaymentResult, error) {
	if req.PaymentKey == "" || req.OrderID == "" || req.Amount <= 0 {
		return nil, apperrors.ValidationFailed("missing_parameters", "paymentKey, orderId and amount are required")
	}

	payment, err := s.loadOwnPayment(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if payment.Status != types.PaymentStatusPending {
		return nil, apperrors.NewConflictError("Payment already processed", string(payment.Status))
	}
	if payment.Amount != req.Amount {
		return nil, apperrors.ValidationFailed("amount_mismatch", "amount does not match the order")
	}

	approved, err := s.gateway.Confirm(ctx, toss.ConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		return nil, s.handleGatewayError(ctx, req.OrderID, err)
	}

	now := s.now().UTC()
	completion := types.PaymentCompletion{
		PaymentKey: approved.PaymentKey,
		Method:     approved.Method,
		ApprovedAt: approved.ApprovedAt,
	}
	if completion.PaymentKey == "" {
		completion.PaymentKey = req.PaymentKey
	}
	if completion.ApprovedAt.IsZero() {
		completion.ApprovedAt = now
	}

	sub := NewSubscription(userID, &payment.ID, SubscriptionMonths(payment.Amount), now)
	if err := s.payments.Complete(ctx, req.OrderID, completion, sub); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewConflictError("Payment already processed", req.OrderID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	payment.Status = types.PaymentStatusCompleted
	payment.PaymentKey = &completion.PaymentKey
	payment.Method = &completion.Method
	payment.ApprovedAt = &completion.ApprovedAt
	payment.UpdatedAt = now

	s.markPremium(ctx, userID, payment, now)
	s.queueReceipt(email, payment, sub)
	events.Emit(ctx, s.publisher, types.Activity{
		Type:      types.ActivityPaymentCompleted,
		UserID:    userID,
		Amount:    payment.Amount,
		Title:     payment.OrderName,
		Timestamp: now,
		Metadata:  map[string]interface{}{"orderId": payment.OrderID},
	})

	s.logger.Infow("Payment confirmed", "orderId", payment.OrderID, "userID", userID, "months", SubscriptionMonths(payment.Amount))
	return &types.PaymentResult{Payment: payment, Subscription: sub}, nil
}

// handleGatewayError records gateway rejections (4xx) on the order. Transport
// failures, an open breaker and 5xx answers leave the charge state unknown,
// so the order stays pending and the client can retry the confirm.
func (s *PaymentService) handleGatewayError(ctx context.Context, orderID string, err error) error {
	var apiErr *toss.APIError
	if errors.As(err, &apiErr) && apiErr.Rejected() {
		if markErr := s.payments.MarkFailed(ctx, orderID, apiErr.Code, apiErr.Message); markErr != nil {
			s.logger.Errorw("Failed to record payment failure", "orderId", orderID, "error", markErr)
		}
		events.Emit(ctx, s.publisher, types.Activity{
			Type:      types.ActivityPaymentFailed,
			Timestamp: s.now().UTC(),
			Metadata:  map[string]interface{}{"orderId": orderID, "code": apiErr.Code},
		})
		return apperrors.PaymentFailed(apiErr.Code, apiErr.Message)
	}
	s.logger.Errorw("Payment gateway unavailable", "orderId", orderID, "error", err)
	return apperrors.ExternalServiceError("TossPayments", err)
}

func (s *PaymentService) markPremium(ctx context.Context, userID string, payment *types.Payment, now time.Time) {
	if s.directory == nil {
		return
	}
	metadata := map[string]interface{}{
		MetadataPremiumKey: true,
		"subscriptionDate": now.Format(time.RFC3339),
		"orderId":          payment.OrderID,
	}
	if payment.PaymentKey != nil {
		metadata["paymentKey"] = *payment.PaymentKey
	}
	if err := s.directory.UpdateAppMetadata(ctx, userID, metadata); err != nil {
		s.logger.Warnw("Failed to mirror premium flag to Supabase", "userID", userID, "error", err)
	}
}

func (s *PaymentService) queueReceipt(email string, payment *types.Payment, sub *types.Subscription) {
	if s.email == nil || s.jobs == nil || email == "" {
		return
	}
	receipt := types.PaymentReceipt{
		To:           email,
		OrderID:      payment.OrderID,
		OrderName:    payment.OrderName,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		ApprovedAt:   *payment.ApprovedAt,
		PremiumUntil: sub.EndDate,
	}
	if payment.Method != nil {
		receipt.Method = *payment.Method
	}
	if !s.jobs.Submit(Job{
		Name: "payment-receipt",
		Execute: func(ctx context.Context) error {
			return s.email.SendPaymentReceipt(ctx, receipt)
		},
	}) {
		s.logger.Warnw("Receipt email dropped", "orderId", payment.OrderID)
	}
}

// FailPayment records a failure reported by the widget's fail redirect.
func (s *PaymentService) FailPayment(ctx context.Context, userID string, req types.FailPaymentRequest) error {
	payment, err := s.loadOwnPayment(ctx, userID, req.OrderID)
	if err != nil {
		return err
	}
	if payment.Status != types.PaymentStatusPending {
		return apperrors.NewConflictError("Payment already processed", string(payment.Status))
	}
	if err := s.payments.MarkFailed(ctx, req.OrderID, req.Code, req.Message); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("payment", req.OrderID)
		}
		return apperrors.NewDatabaseError(err)
	}
	events.Emit(ctx, s.publisher, types.Activity{
		Type:      types.ActivityPaymentFailed,
		UserID:    userID,
		Timestamp: s.now().UTC(),
		Metadata:  map[string]interface{}{"orderId": req.OrderID, "code": req.Code},
	})
	return nil
}

// ListPayments returns a page of payments for the admin dashboard.
func (s *PaymentService) ListPayments(ctx context.Context, filter types.PaymentFilter) (*types.ContentList[types.Payment], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.ValidationFailed("invalid_status", fmt.Sprintf("unknown payment status %q", filter.Status))
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	payments, total, err := s.payments.ListPayments(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if payments == nil {
		payments = []types.Payment{}
	}
	return &types.ContentList[types.Payment]{
		Items:      payments,
		Pagination: types.Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Stats summarizes revenue and payment counts.
func (s *PaymentService) Stats(ctx context.Context) (*types.PaymentStats, error) {
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return stats, nil
}

// clampPage applies the default and maximum page size.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = types.DefaultContentLimit
	}
	if limit > types.MaxContentLimit {
		limit = types.MaxContentLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
