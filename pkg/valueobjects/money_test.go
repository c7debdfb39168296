package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		currency    Currency
		shouldError bool
	}{
		{
			name:     "valid won",
			amount:   decimal.NewFromInt(9900),
			currency: KRW,
		},
		{
			name:     "valid dollars",
			amount:   decimal.RequireFromString("10.99"),
			currency: USD,
		},
		{
			name:        "fractional won",
			amount:      decimal.RequireFromString("9900.5"),
			currency:    KRW,
			shouldError: true,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromInt(-1),
			currency:    KRW,
			shouldError: true,
		},
		{
			name:        "unsupported currency",
			amount:      decimal.NewFromInt(1),
			currency:    "XXX",
			shouldError: true,
		},
		{
			name:        "too many decimal places",
			amount:      decimal.RequireFromString("10.999"),
			currency:    USD,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money, err := NewMoney(tt.amount, tt.currency)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, money)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.amount.Equal(money.Amount()))
			assert.Equal(t, tt.currency, money.Currency())
		})
	}
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("9900", "krw")
	require.NoError(t, err)
	assert.Equal(t, KRW, m.Currency())
	assert.Equal(t, int64(9900), m.Minor())

	_, err = NewMoneyFromString("abc", "KRW")
	assert.Error(t, err)
}

func TestNewMoneyFromMinor(t *testing.T) {
	usd, err := NewMoneyFromMinor(1099, USD)
	require.NoError(t, err)
	assert.Equal(t, "10.99 USD", usd.String())
	assert.Equal(t, int64(1099), usd.Minor())

	krw, err := NewMoneyFromMinor(9900, KRW)
	require.NoError(t, err)
	assert.Equal(t, "9900 KRW", krw.String())
}

func TestMoney_Arithmetic(t *testing.T) {
	a, _ := NewMoneyFromMinor(9900, KRW)
	b, _ := NewMoneyFromMinor(100, KRW)
	usd, _ := NewMoneyFromMinor(100, USD)

	sum, err := a.Add(*b)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sum.Minor())

	_, err = a.Add(*usd)
	assert.Error(t, err)

	cmp, err := a.Compare(*b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	_, err = a.Compare(*usd)
	assert.Error(t, err)

	assert.True(t, a.IsPositive())
	assert.False(t, a.IsZero())
	assert.False(t, a.Equals(*b))
}

func TestMoney_Display(t *testing.T) {
	tests := []struct {
		minor    int64
		currency Currency
		want     string
	}{
		{0, KRW, "₩0"},
		{900, KRW, "₩900"},
		{9900, KRW, "₩9,900"},
		{1234567, KRW, "₩1,234,567"},
		{123456, USD, "$1,234.56"},
	}
	for _, tt := range tests {
		m, err := NewMoneyFromMinor(tt.minor, tt.currency)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Display())
	}
}
