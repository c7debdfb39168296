package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusNone     SubscriptionStatus = "none"
)

// Subscription is a premium membership period.
type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Status    SubscriptionStatus `json:"status"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	PaymentID *string            `json:"payment_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// IsActive reports whether the subscription grants premium access at now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.EndDate.After(now)
}

// SubscriptionView is the subscription state returned to a member.
type SubscriptionView struct {
	Status       SubscriptionStatus `json:"status"`
	IsPremium    bool               `json:"is_premium"`
	Subscription *Subscription      `json:"subscription,omitempty"`
}
