package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
)

// MetadataPremiumKey is the Supabase app_metadata flag mirrored on payment.
const MetadataPremiumKey = "isPremium"

// SubscriptionService manages premium membership periods.
type SubscriptionService struct {
	subs      store.SubscriptionStore
	directory UserDirectory
	publisher types.ActivityPublisher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

var _ PremiumChecker = (*SubscriptionService)(nil)

// NewSubscriptionService creates the service. directory and publisher may be nil.
func NewSubscriptionService(subs store.SubscriptionStore, directory UserDirectory, publisher types.ActivityPublisher) *SubscriptionService {
	return &SubscriptionService{
		subs:      subs,
		directory: directory,
		publisher: publisher,
		logger:    logger.GetLogger().Named("subscriptions"),
		now:       time.Now,
	}
}

// NewSubscription builds an active subscription starting at now and ending
// months calendar months later. Non-positive months count as one.
func NewSubscription(userID string, paymentID *string, months int, now time.Time) *types.Subscription {
	if months <= 0 {
		months = 1
	}
	start := now.UTC()
	return &types.Subscription{
		UserID:    userID,
		Status:    types.SubscriptionStatusActive,
		StartDate: start,
		EndDate:   start.AddDate(0, months, 0),
		PaymentID: paymentID,
		CreatedAt: start,
	}
}

// GetUserSubscription returns the latest subscription of a user, or nil.
func (s *SubscriptionService) GetUserSubscription(ctx context.Context, userID string) (*types.Subscription, error) {
	sub, err := s.subs.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return sub, nil
}

// IsActive reports whether sub grants premium access now.
func (s *SubscriptionService) IsActive(sub *types.Subscription) bool {
	return sub.IsActive(s.now())
}

// IsPremium reports whether a user may read premium content. The token's
// metadata flag is trusted on its own; otherwise an active subscription is
// required.
func (s *SubscriptionService) IsPremium(ctx context.Context, userID string, metadataPremium bool) (bool, error) {
	if metadataPremium {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	sub, err := s.GetUserSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.IsActive(sub), nil
}

// View summarizes the member's subscription state.
func (s *SubscriptionService) View(ctx context.Context, userID string, metadataPremium bool) (*types.SubscriptionView, error) {
	sub, err := s.GetUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &types.SubscriptionView{
		Status:       types.SubscriptionStatusNone,
		Subscription: sub,
		IsPremium:    metadataPremium,
	}
	if sub != nil {
		view.Status = sub.Status
		if sub.Status == types.SubscriptionStatusActive && !s.IsActive(sub) {
			view.Status = types.SubscriptionStatusExpired
		}
		view.IsPremium = view.IsPremium || s.IsActive(sub)
	}
	return view, nil
}

// Create starts a subscription for userID lasting months calendar months.
func (s *SubscriptionService) Create(ctx context.Context, userID string, paymentID *string, months int) (*types.Subscription, error) {
	sub := NewSubscription(userID, paymentID, months, s.now())
	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return sub, nil
}

// Cancel marks a subscription canceled. Only its owner may cancel it.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID, userID string) (*types.Subscription, error) {
	sub, err := s.subs.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("subscription", subscriptionID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if sub.UserID != userID {
		return nil, apperrors.Forbidden("Not allowed to cancel this subscription", "subscription belongs to another user")
	}
	if sub.Status != types.SubscriptionStatusActive {
		return nil, apperrors.NewConflictError("Subscription is not active", string(sub.Status))
	}

	if err := s.subs.UpdateStatus(ctx, sub.ID, types.SubscriptionStatusCanceled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("subscription", subscriptionID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	sub.Status = types.SubscriptionStatusCanceled

	s.clearPremium(ctx, userID)
	events.Emit(ctx, s.publisher, types.Activity{
		Type:      types.ActivitySubscriptionCanceled,
		UserID:    userID,
		Timestamp: s.now().UTC(),
	})
	return sub, nil
}

// CancelCurrent cancels the member's latest subscription.
func (s *SubscriptionService) CancelCurrent(ctx context.Context, userID string) (*types.Subscription, error) {
	sub, err := s.GetUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NotFound("subscription", userID)
	}
	return s.Cancel(ctx, sub.ID, userID)
}

// ExpireDue expires every active subscription past its end date and clears
// the premium flag of the affected users.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	userIDs, err := s.subs.ExpireDue(ctx, now)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	for _, userID := range userIDs {
		s.clearPremium(ctx, userID)
		events.Emit(ctx, s.publisher, types.Activity{
			Type:      types.ActivitySubscriptionExpired,
			UserID:    userID,
			Timestamp: now,
		})
	}
	if len(userIDs) > 0 {
		s.logger.Infow("Expired subscriptions", "count", len(userIDs))
	}
	return len(userIDs), nil
}

// ExpiryJob wraps ExpireDue for the worker pool ticker.
func (s *SubscriptionService) ExpiryJob() Job {
	return Job{
		Name: "subscription-expiry",
		Execute: func(ctx context.Context) error {
			_, err := s.ExpireDue(ctx)
			return err
		},
	}
}

func (s *SubscriptionService) clearPremium(ctx context.Context, userID string) {
	if s.directory == nil {
		return
	}
	if err := s.directory.UpdateAppMetadata(ctx, userID, map[string]interface{}{MetadataPremiumKey: false}); err != nil {
		s.logger.Warnw("Failed to clear premium flag", "userID", userID, "error", err)
	}
}
