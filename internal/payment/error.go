package payment

import (
	"errors"
	"fmt"

	"mshop-be/internal/apperror"
)

var (
	ErrOrderIDRequired  = apperror.InvalidRequest("orderId is required")
	ErrIntentIDRequired = apperror.InvalidRequest("paymentIntentId is required")
	ErrReasonRequired   = apperror.InvalidRequest("refund reason is required")
	ErrAlreadyPaid      = apperror.InvalidRequest("order is already paid")
	ErrNotPaid          = apperror.InvalidRequest("only paid orders can be refunded")
	ErrNoPaymentID      = apperror.InvalidRequest("order has no recorded payment")
	ErrInvalidAmount    = apperror.InvalidRequest("refund amount must be positive and not exceed the order total")
	ErrIntentMismatch   = apperror.InvalidRequest("payment intent does not belong to this order")
	ErrPaymentNotDone   = apperror.InvalidRequest("payment has not succeeded")
	ErrOrderNotFound    = apperror.NotFound("order not found")
	ErrForbidden        = apperror.Forbidden("admin role required")

	ErrPaymentUnrecorded = apperror.Conflict("payment succeeded but the order can no longer be marked paid")
	ErrRefundConflict    = apperror.Conflict("order was refunded or changed by another request")

	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSignatureExpired = errors.New("webhook timestamp outside tolerance")
	ErrNoWebhookSecret  = errors.New("webhook secret is not configured")
)

// ProviderError is a non-2xx answer from the payment provider.
type ProviderError struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("stripe error %d (%s/%s): %s", e.StatusCode, e.Type, e.Code, e.Message)
}
