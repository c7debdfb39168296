package types

import (
	"context"
	"time"

	"github.com/jungianjournals/journals-backend/errors"
)

type ActivityType string

const (
	CategoryContent      = "CONTENT"
	CategoryPayment      = "PAYMENT"
	CategorySubscription = "SUBSCRIPTION"
)

const (
	ActivityVideoViewed    ActivityType = CategoryContent + "_VIDEO_VIEWED"
	ActivityBlogViewed     ActivityType = CategoryContent + "_BLOG_VIEWED"
	ActivityContentCreated ActivityType = CategoryContent + "_CREATED"
	ActivityContentUpdated ActivityType = CategoryContent + "_UPDATED"
	ActivityContentDeleted ActivityType = CategoryContent + "_DELETED"

	ActivityPaymentCompleted ActivityType = CategoryPayment + "_COMPLETED"
	ActivityPaymentFailed    ActivityType = CategoryPayment + "_FAILED"

	ActivitySubscriptionCanceled ActivityType = CategorySubscription + "_CANCELED"
	ActivitySubscriptionExpired  ActivityType = CategorySubscription + "_EXPIRED"
)

// Activity is a site event shown on the admin dashboard feed.
type Activity struct {
	ID        string                 `json:"id"`
	Type      ActivityType           `json:"type"`
	UserID    string                 `json:"user_id,omitempty"`
	ContentID string                 `json:"content_id,omitempty"`
	Kind      ContentKind            `json:"kind,omitempty"`
	Title     string                 `json:"title,omitempty"`
	Amount    int64                  `json:"amount,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the fields every activity must carry.
func (a Activity) Validate() error {
	if a.Type == "" {
		return errors.ValidationFailed("invalid activity", "activity type is required")
	}
	if a.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid activity", "timestamp is required")
	}
	return nil
}

// ActivityPublisher fans site activity out to dashboard subscribers and
// keeps a short history of the latest entries.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity Activity) error
	Subscribe(ctx context.Context, subscriberID string, filters ...ActivityType) (<-chan Activity, error)
	Unsubscribe(ctx context.Context, subscriberID string) error
	Recent(ctx context.Context, limit int) ([]Activity, error)
}
