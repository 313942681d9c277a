package rest

import (
	"net/http"

	"mshop-be/internal/payment"
	"mshop-be/internal/transport"
)

type intentRequest struct {
	OrderID uint `json:"orderId"`
}

type confirmRequest struct {
	OrderID         uint   `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in intentRequest
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	res, err := h.payments.CreatePaymentIntent(r.Context(), actor(r), in.OrderID)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, res)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var in confirmRequest
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	o, err := h.payments.ConfirmPayment(r.Context(), actor(r), in.OrderID, in.PaymentIntentID)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, o)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var in payment.RefundInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	res, err := h.payments.Refund(r.Context(), actor(r), in)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, res)
}
