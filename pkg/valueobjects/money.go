package valueobjects

import (
	"fmt"
	"strings"

	"github.com/jungianjournals/journals-backend/errors"
	"github.com/shopspring/decimal"
)

// Currency represents a valid ISO 4217 currency code
type Currency string

// Supported currencies
const (
	KRW Currency = "KRW"
	USD Currency = "USD"
)

// minorDigits is the number of decimal places each currency allows.
var minorDigits = map[Currency]int32{
	KRW: 0,
	USD: 2,
}

var currencySymbols = map[Currency]string{
	KRW: "₩",
	USD: "$",
}

const (
	ErrInvalidAmount    = "INVALID_AMOUNT"
	ErrInvalidCurrency  = "INVALID_CURRENCY"
	ErrCurrencyMismatch = "CURRENCY_MISMATCH"
)

// Money represents a monetary value with a specific currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money instance with validation
func NewMoney(amount decimal.Decimal, currency Currency) (*Money, error) {
	digits, ok := minorDigits[currency]
	if !ok {
		return nil, errors.ValidationFailed(
			ErrInvalidCurrency,
			fmt.Sprintf("currency %s is not supported", currency),
		)
	}

	if amount.LessThan(decimal.Zero) {
		return nil, errors.ValidationFailed(
			ErrInvalidAmount,
			"amount cannot be negative",
		)
	}

	if amount.Exponent() < -digits && !amount.Equal(amount.Truncate(digits)) {
		return nil, errors.ValidationFailed(
			ErrInvalidAmount,
			fmt.Sprintf("%s amounts cannot have more than %d decimal places", currency, digits),
		)
	}

	return &Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromString creates a Money instance from string representations
func NewMoneyFromString(amount string, currency string) (*Money, error) {
	decimalAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.ValidationFailed(
			ErrInvalidAmount,
			err.Error(),
		)
	}
	return NewMoney(decimalAmount, Currency(strings.ToUpper(currency)))
}

// NewMoneyFromMinor builds Money from an integer count of the currency's
// smallest unit (won for KRW, cents for USD).
func NewMoneyFromMinor(minor int64, currency Currency) (*Money, error) {
	digits, ok := minorDigits[currency]
	if !ok {
		return nil, errors.ValidationFailed(
			ErrInvalidCurrency,
			fmt.Sprintf("currency %s is not supported", currency),
		)
	}
	return NewMoney(decimal.New(minor, -digits), currency)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Minor returns the amount in the currency's smallest unit.
func (m Money) Minor() int64 {
	return m.amount.Shift(minorDigits[m.currency]).IntPart()
}

// Add adds two monetary values of the same currency
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.ValidationFailed(
			ErrCurrencyMismatch,
			fmt.Sprintf("cannot add %s to %s", other.currency, m.currency),
		)
	}
	return &Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.GreaterThan(decimal.Zero)
}

// Equals checks if two monetary values are equal
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, errors.ValidationFailed(
			ErrCurrencyMismatch,
			fmt.Sprintf("cannot compare %s with %s", m.currency, other.currency),
		)
	}
	return m.amount.Cmp(other.amount), nil
}

// String returns a string representation of the money value
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(minorDigits[m.currency]), m.currency)
}

// Display formats the amount for receipts, e.g. "₩9,900".
func (m Money) Display() string {
	fixed := m.amount.StringFixed(minorDigits[m.currency])
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return currencySymbols[m.currency] + b.String()
}
