package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmailsService struct {
	mock.Mock
}

func (m *mockEmailsService) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}

// Mock registry that doesn't actually register metrics
type mockRegistry struct{}

func (m *mockRegistry) Register(c prometheus.Collector) error   { return nil }
func (m *mockRegistry) MustRegister(cs ...prometheus.Collector) {}
func (m *mockRegistry) Unregister(c prometheus.Collector) bool  { return true }

func testEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		FromName:     "Jungian Journals",
		FromAddress:  "no-reply@jungianjournals.com",
		ResendAPIKey: "re_test_key",
	}
}

func testReceipt() types.PaymentReceipt {
	return types.PaymentReceipt{
		To:           "reader@example.com",
		OrderID:      "order_1718452800000_abc123xyz",
		OrderName:    "Jungian Journals Premium",
		Amount:       9900,
		Currency:     "KRW",
		Method:       "카드",
		ApprovedAt:   time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		PremiumUntil: time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC),
	}
}

func testGetCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewEmailServiceWithRegistry(t *testing.T) {
	cfg := testEmailConfig()
	service := NewEmailServiceWithRegistry(cfg, prometheus.NewRegistry())

	assert.Equal(t, cfg, service.config)
	assert.NotNil(t, service.sender)
	assert.NotNil(t, service.metrics)
}

func TestSendPaymentReceipt(t *testing.T) {
	tests := []struct {
		name        string
		receipt     types.PaymentReceipt
		setupMock   func(*mockEmailsService)
		expectError bool
		expectSent  float64
	}{
		{
			name:    "successful send renders amount and period",
			receipt: testReceipt(),
			setupMock: func(m *mockEmailsService) {
				m.On("SendWithContext", mock.Anything, mock.MatchedBy(func(req *resend.SendEmailRequest) bool {
					return req.From == "Jungian Journals <no-reply@jungianjournals.com>" &&
						len(req.To) == 1 && req.To[0] == "reader@example.com" &&
						containsAll(req.Html, "₩9,900", "2024-07-15", "order_1718452800000_abc123xyz")
				})).Return(&resend.SendEmailResponse{Id: "email-id"}, nil)
			},
			expectSent: 1,
		},
		{
			name:    "provider failure",
			receipt: testReceipt(),
			setupMock: func(m *mockEmailsService) {
				m.On("SendWithContext", mock.Anything, mock.Anything).Return(nil, assert.AnError)
			},
			expectError: true,
		},
		{
			name: "missing recipient",
			receipt: func() types.PaymentReceipt {
				r := testReceipt()
				r.To = ""
				return r
			}(),
			setupMock:   func(m *mockEmailsService) {},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockEmailsService{}
			tt.setupMock(sender)
			service := newEmailService(testEmailConfig(), sender, &mockRegistry{})

			err := service.SendPaymentReceipt(context.Background(), tt.receipt)
			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, 1.0, testGetCounterValue(t, service.metrics.errorCount))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectSent, testGetCounterValue(t, service.metrics.sentCount))
			sender.AssertExpectations(t)
		})
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
