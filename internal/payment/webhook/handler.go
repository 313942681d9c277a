package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"mshop-be/internal/logger"
	"mshop-be/internal/metrics"
	"mshop-be/internal/payment"
	"mshop-be/internal/transport"

	"go.uber.org/zap"
)

const maxPayloadBytes = 64 << 10

// EventHandler applies a verified provider event to local state.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *payment.Event) error
}

// EventParser verifies the signature over the raw body and decodes it.
type EventParser interface {
	ParseWebhookEvent(payload []byte, signatureHeader string) (*payment.Event, error)
}

type Handler struct {
	service EventHandler
	parser  EventParser
	log     payment.Repository
}

func NewWebhookHandler(service EventHandler, parser EventParser, log payment.Repository) *Handler {
	return &Handler{
		service: service,
		parser:  parser,
		log:     log,
	}
}

// PaymentWebhookHandler acknowledges every authentic delivery it could
// process, even when the referenced order is unknown. Signature failures
// are 400 with no side effects; processing failures are 500 so the
// provider redelivers.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("method", "PaymentWebhookHandler"),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		transport.Message(w, http.StatusBadRequest, "failed to read body")
		return
	}

	ev, err := h.parser.ParseWebhookEvent(body, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		metrics.RecordPaymentEvent("webhook", "rejected")
		if errors.Is(err, payment.ErrNoWebhookSecret) {
			log.Error("webhook secret not configured, rejecting delivery")
		} else {
			log.Warn("webhook rejected", zap.Error(err))
		}
		transport.Message(w, http.StatusBadRequest, "invalid webhook signature or payload")
		return
	}

	log = log.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	rec := payment.WebhookRecord{
		Provider:  payment.ProviderStripe,
		EventID:   ev.ID,
		EventType: ev.Type,
		Payload:   ev.Payload,
	}
	if ev.Intent != nil {
		rec.IntentID = ev.Intent.ID
	}

	webhookID, processed, err := h.log.SaveWebhookEvent(ctx, rec)
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		transport.Message(w, http.StatusInternalServerError, "failed to record webhook")
		return
	}
	if processed {
		log.Info("duplicate webhook, already processed")
		metrics.RecordPaymentEvent(ev.Type, "duplicate")
		transport.OK(w, map[string]bool{"received": true})
		return
	}

	if err := h.service.HandleEvent(ctx, ev); err != nil {
		log.Error("webhook processing failed", zap.Error(err))
		if markErr := h.log.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to record webhook failure", zap.Error(markErr))
		}
		transport.Message(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	if err := h.log.MarkWebhookProcessed(ctx, webhookID); err != nil {
		// state is already applied and transitions are idempotent
		log.Warn("failed to mark webhook processed", zap.Error(err))
	}

	log.Info("webhook processed")
	transport.OK(w, map[string]bool{"received": true})
}
