package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jungianjournals/journals-backend/types"
)

// MemberHandler serves the signed-in member's subscription and checkout.
type MemberHandler struct {
	subscriptions SubscriptionServiceInterface
	payments      PaymentServiceInterface
}

func NewMemberHandler(subscriptions SubscriptionServiceInterface, payments PaymentServiceInterface) *MemberHandler {
	return &MemberHandler{subscriptions: subscriptions, payments: payments}
}

// GetSubscriptionHandler godoc
// @Summary Current subscription
// @Tags subscription
// @Produce json
// @Success 200 {object} types.SubscriptionView
// @Failure 401 {object} middleware.ErrorResponse
// @Router /me/subscription [get]
// @Security BearerAuth
func (h *MemberHandler) GetSubscriptionHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	view, err := h.subscriptions.View(c.Request.Context(), identity.UserID, identity.MetadataPremium)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelSubscriptionHandler godoc
// @Summary Cancel the current subscription
// @Tags subscription
// @Produce json
// @Success 200 {object} types.Subscription
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /me/subscription/cancel [post]
// @Security BearerAuth
func (h *MemberHandler) CancelSubscriptionHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	sub, err := h.subscriptions.CancelCurrent(c.Request.Context(), identity.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// CheckoutHandler godoc
// @Summary Start a premium checkout
// @Description Creates a pending order and returns the TossPayments widget parameters.
// @Tags payments
// @Produce json
// @Success 201 {object} types.CheckoutSession
// @Failure 401 {object} middleware.ErrorResponse
// @Router /payments/checkout [post]
// @Security BearerAuth
func (h *MemberHandler) CheckoutHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	session, err := h.payments.PrepareCheckout(c.Request.Context(), identity.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ConfirmPaymentHandler godoc
// @Summary Confirm a payment after the success redirect
// @Tags payments
// @Accept json
// @Produce json
// @Param request body types.ConfirmPaymentRequest true "Redirect parameters"
// @Success 200 {object} types.PaymentResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 402 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /payments/confirm [post]
// @Security BearerAuth
func (h *MemberHandler) ConfirmPaymentHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.ConfirmPaymentRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	result, err := h.payments.ConfirmPayment(c.Request.Context(), identity.UserID, identity.Email, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FailPaymentHandler godoc
// @Summary Record a failed or abandoned payment
// @Tags payments
// @Accept json
// @Param request body types.FailPaymentRequest true "Redirect parameters"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments/fail [post]
// @Security BearerAuth
func (h *MemberHandler) FailPaymentHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.FailPaymentRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	if err := h.payments.FailPayment(c.Request.Context(), identity.UserID, req); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
