package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, "database operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))

	assert.Nil(t, Wrap(nil, DatabaseError, "nothing"))
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"not found", NotFound("Video", "abc"), NotFoundError, http.StatusNotFound},
		{"validation", ValidationFailed("bad", "x"), ValidationError, http.StatusBadRequest},
		{"auth", AuthenticationFailed("nope"), AuthError, http.StatusUnauthorized},
		{"unauthorized", Unauthorized("token_expired", "expired"), AuthError, http.StatusUnauthorized},
		{"forbidden", Forbidden("no", "owner only"), ForbiddenError, http.StatusForbidden},
		{"conflict", NewConflictError("dup", "order"), ConflictError, http.StatusConflict},
		{"rate limit", RateLimitExceeded("slow down", 30), RateLimitError, http.StatusTooManyRequests},
		{"payment required", PaymentRequired("premium only"), PaymentRequiredError, http.StatusPaymentRequired},
		{"payment failed", PaymentFailed("REJECT_CARD_COMPANY", "rejected"), PaymentError, http.StatusPaymentRequired},
		{"external", ExternalServiceError("Supabase", fmt.Errorf("timeout")), ExternalServiceErr, http.StatusBadGateway},
		{"internal", InternalServerError("boom"), ServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.GetHTTPStatus())
		})
	}
}

func TestNewDatabaseError(t *testing.T) {
	originalErr := fmt.Errorf("connection failed")
	err := NewDatabaseError(originalErr)
	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, "Database operation failed", err.Message)
	assert.Equal(t, "Please try again later", err.Detail)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, originalErr, err.Raw)
}

func TestRateLimitExceededDetail(t *testing.T) {
	err := RateLimitExceeded("Too many requests", 42)
	assert.Equal(t, "retry after 42 seconds", err.Detail)
}

func TestGetHTTPStatusFallback(t *testing.T) {
	err := &AppError{Type: NotFoundError}
	assert.Equal(t, http.StatusNotFound, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, http.StatusInternalServerError, err.GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "with detail",
			err:      &AppError{Type: ValidationError, Message: "invalid input", Detail: "field required"},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name:     "without detail",
			err:      &AppError{Type: AuthError, Message: "unauthorized"},
			expected: "AUTHENTICATION_ERROR: unauthorized",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
