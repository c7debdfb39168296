// Package toss is a minimal TossPayments client covering payment
// confirmation.
package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "https://api.tosspayments.com"
	confirmPath    = "/v1/payments/confirm"
	breakerName    = "toss-payments"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("toss payments unavailable")

// APIError is a rejection returned by TossPayments.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("toss: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}

// Rejected reports a definitive refusal of the payment. 5xx answers are not
// rejections: the charge may or may not have gone through.
func (e *APIError) Rejected() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// ConfirmRequest is the body of the confirm call.
type ConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// Payment is the subset of the TossPayments payment object the service uses.
type Payment struct {
	PaymentKey  string    `json:"paymentKey"`
	OrderID     string    `json:"orderId"`
	OrderName   string    `json:"orderName"`
	Status      string    `json:"status"`
	Method      string    `json:"method"`
	TotalAmount int64     `json:"totalAmount"`
	Currency    string    `json:"currency"`
	ApprovedAt  time.Time `json:"approvedAt"`
}

// Client calls the TossPayments REST API.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[*Payment]
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a client authenticating with secretKey.
func NewClient(baseURL, secretKey string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(secretKey+":")),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	log := logger.GetLogger().Named("toss")
	c.cb = gobreaker.NewCircuitBreaker[*Payment](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Declined payments are business outcomes, not gateway failures.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.Rejected())
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Confirm approves a payment previously authorized in the browser widget.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*Payment, error) {
	p, err := c.cb.Execute(func() (*Payment, error) {
		return c.confirm(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return p, err
}

// State reports the breaker state for health checks.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

func (c *Client) confirm(ctx context.Context, req ConfirmRequest) (*Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+confirmPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader)
	// Toss deduplicates retried confirmations on this key.
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "UNKNOWN_ERROR"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &p, nil
}
