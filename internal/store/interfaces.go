// Package store declares the persistence contracts used by the services.
// internal/store/postgres implements them on pgx.
package store

import (
	"context"
	"time"

	"github.com/jungianjournals/journals-backend/types"
)

// VideoStore persists video_content rows.
type VideoStore interface {
	GetVideo(ctx context.Context, id string) (*types.Video, error)
	ListVideos(ctx context.Context, filter types.ContentFilter) ([]types.Video, int, error)
	ListKeywords(ctx context.Context, category types.ContentCategory) ([]types.KeywordCount, error)
	// ListCandidates returns up to limit videos other than excludeID, newest first.
	ListCandidates(ctx context.Context, excludeID string, limit int) ([]types.Video, error)
	GetVideosByIDs(ctx context.Context, ids []string) ([]types.Video, error)
	ListPopular(ctx context.Context, limit int) ([]types.Video, error)
	// ListPreferred returns videos not in excludeIDs whose category is one of
	// categories or whose keywords contain every entry of keywords.
	ListPreferred(ctx context.Context, excludeIDs, categories, keywords []string, limit int) ([]types.Video, error)
	CreateVideo(ctx context.Context, video *types.Video) error
	UpdateVideo(ctx context.Context, video *types.Video) error
	DeleteVideo(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	TotalViews(ctx context.Context) (int64, error)
	TopByViews(ctx context.Context, limit int) ([]types.TopContent, error)
}

// BlogStore persists blog_content rows.
type BlogStore interface {
	GetBlog(ctx context.Context, id string) (*types.Blog, error)
	ListBlogs(ctx context.Context, filter types.ContentFilter) ([]types.Blog, int, error)
	CreateBlog(ctx context.Context, blog *types.Blog) error
	UpdateBlog(ctx context.Context, blog *types.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	TotalViews(ctx context.Context) (int64, error)
	TopByViews(ctx context.Context, limit int) ([]types.TopContent, error)
}

// ViewHistoryStore persists user_view_history rows.
type ViewHistoryStore interface {
	RecordView(ctx context.Context, userID, videoID string, at time.Time) error
	// RecentVideoIDs returns the video ids of the latest views, newest first.
	RecentVideoIDs(ctx context.Context, userID string, limit int) ([]string, error)
	// VisitsByDate counts views per UTC day since the given time. Days without
	// views are omitted.
	VisitsByDate(ctx context.Context, since time.Time) ([]types.DailyCount, error)
}

// SubscriptionStore persists subscriptions rows.
type SubscriptionStore interface {
	GetLatestByUser(ctx context.Context, userID string) (*types.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*types.Subscription, error)
	CreateSubscription(ctx context.Context, sub *types.Subscription) error
	UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error
	// ExpireDue marks active subscriptions whose end date is not after now as
	// expired and returns the affected user ids.
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
	// ActiveUntil maps user ids with an active subscription at now to its end date.
	ActiveUntil(ctx context.Context, now time.Time) (map[string]time.Time, error)
}

// PaymentStore persists payments rows.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *types.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*types.Payment, error)
	// Complete marks a pending payment completed and creates sub in the same
	// transaction. It returns ErrConflict when the payment is no longer pending.
	Complete(ctx context.Context, orderID string, completion types.PaymentCompletion, sub *types.Subscription) error
	// MarkFailed records a failure on a pending payment.
	MarkFailed(ctx context.Context, orderID, code, reason string) error
	ListPayments(ctx context.Context, filter types.PaymentFilter) ([]types.Payment, int, error)
	Stats(ctx context.Context) (*types.PaymentStats, error)
}
