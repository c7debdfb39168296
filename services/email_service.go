package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/pkg/valueobjects"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// emailSender is the part of the Resend emails API the service uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config  *config.EmailConfig
	sender  emailSender
	metrics *EmailMetrics
	tmpl    *template.Template
}

var _ types.EmailService = (*EmailService)(nil)

var receiptTemplate = template.Must(template.New("receipt").Parse(receiptEmailTemplate))

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress,
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))
	client := resend.NewClient(cfg.ResendAPIKey)
	return newEmailService(cfg, client.Emails, reg)
}

func newEmailService(cfg *config.EmailConfig, sender emailSender, reg prometheus.Registerer) *EmailService {
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journals_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journals_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journals_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		sender:  sender,
		metrics: metrics,
		tmpl:    receiptTemplate,
	}
}

type receiptView struct {
	OrderID      string
	OrderName    string
	Amount       string
	Method       string
	ApprovedAt   string
	PremiumUntil string
}

// SendPaymentReceipt emails the purchase receipt for a completed payment.
func (s *EmailService) SendPaymentReceipt(ctx context.Context, receipt types.PaymentReceipt) error {
	startTime := time.Now()
	log := logger.GetLogger().Named("email")
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if receipt.To == "" || receipt.OrderID == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("receipt requires a recipient and an order id")
	}

	currency := valueobjects.Currency(receipt.Currency)
	if currency == "" {
		currency = valueobjects.KRW
	}
	amount, err := valueobjects.NewMoneyFromMinor(receipt.Amount, currency)
	if err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("invalid receipt amount: %w", err)
	}

	view := receiptView{
		OrderID:      receipt.OrderID,
		OrderName:    receipt.OrderName,
		Amount:       amount.Display(),
		Method:       receipt.Method,
		ApprovedAt:   receipt.ApprovedAt.Format("2006-01-02 15:04"),
		PremiumUntil: receipt.PremiumUntil.Format("2006-01-02"),
	}

	var htmlContent bytes.Buffer
	if err := s.tmpl.Execute(&htmlContent, view); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{receipt.To},
		Subject: fmt.Sprintf("[Jungian Journals] Payment receipt %s", receipt.OrderID),
		Html:    htmlContent.String(),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(receipt.To),
			"orderId", receipt.OrderID)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Receipt email sent",
		"to", logger.MaskEmail(receipt.To),
		"orderId", receipt.OrderID)
	return nil
}

const receiptEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Jungian Journals Premium</title>
    <style>
        body { font-family: 'serif'; background-color: #f5f1ea; color: #2f2a24; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        h1 { color: #6b4f2c; font-size: 26px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        td { padding: 8px 0; border-bottom: 1px solid #eee3d3; }
        td.label { color: #8a7a66; width: 40%; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Thank you for joining Premium</h1>
        <p>Your payment was approved. Premium content is unlocked until {{.PremiumUntil}}.</p>
        <table>
            <tr><td class="label">Order</td><td>{{.OrderID}}</td></tr>
            <tr><td class="label">Product</td><td>{{.OrderName}}</td></tr>
            <tr><td class="label">Amount</td><td>{{.Amount}}</td></tr>
            <tr><td class="label">Method</td><td>{{.Method}}</td></tr>
            <tr><td class="label">Approved</td><td>{{.ApprovedAt}}</td></tr>
        </table>
    </div>
</body>
</html>`
