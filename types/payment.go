package types

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is a TossPayments order. Amount is in KRW.
type Payment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	OrderID       string        `json:"order_id"`
	OrderName     string        `json:"order_name"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	PaymentKey    *string       `json:"payment_key,omitempty"`
	Method        *string       `json:"method,omitempty"`
	FailureCode   *string       `json:"failure_code,omitempty"`
	FailureReason *string       `json:"failure_reason,omitempty"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PaymentCompletion records a gateway approval.
type PaymentCompletion struct {
	PaymentKey string
	Method     string
	ApprovedAt time.Time
}

// PaymentFilter narrows admin payment listings. Search matches order id,
// order name or user id.
type PaymentFilter struct {
	Status PaymentStatus
	Search string
	Limit  int
	Offset int
}

// PaymentStats summarizes all payments for the admin dashboard.
type PaymentStats struct {
	TotalRevenue int64                   `json:"total_revenue"`
	Total        int64                   `json:"total"`
	ByStatus     map[PaymentStatus]int64 `json:"by_status"`
}

// CheckoutSession carries what the TossPayments widget needs to start a payment.
type CheckoutSession struct {
	ClientKey   string `json:"client_key"`
	OrderID     string `json:"order_id"`
	OrderName   string `json:"order_name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CustomerKey string `json:"customer_key"`
	SuccessURL  string `json:"success_url"`
	FailURL     string `json:"fail_url"`
}

// ConfirmPaymentRequest is posted by the success redirect page.
type ConfirmPaymentRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// FailPaymentRequest is posted by the fail redirect page.
type FailPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaymentResult is returned after a successful confirmation.
type PaymentResult struct {
	Payment      *Payment      `json:"payment"`
	Subscription *Subscription `json:"subscription"`
}
