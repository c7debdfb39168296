package types

import (
	"context"
	"time"
)

// EmailService sends transactional email.
type EmailService interface {
	SendPaymentReceipt(ctx context.Context, receipt PaymentReceipt) error
}

// PaymentReceipt is the data rendered into a premium purchase receipt.
type PaymentReceipt struct {
	To           string
	OrderID      string
	OrderName    string
	Amount       int64
	Currency     string
	Method       string
	ApprovedAt   time.Time
	PremiumUntil time.Time
}
