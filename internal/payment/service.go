package payment

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/events"
	"mshop-be/internal/logger"
	"mshop-be/internal/metrics"
	"mshop-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore is the part of the order repository payments need.
type OrderStore interface {
	GetByID(ctx context.Context, id uint) (*order.Order, error)
	TransitionPayment(ctx context.Context, id uint, t order.PaymentTransition) (bool, error)
}

type Service interface {
	CreatePaymentIntent(ctx context.Context, actor access.Actor, orderID uint) (*IntentResult, error)
	ConfirmPayment(ctx context.Context, actor access.Actor, orderID uint, intentID string) (*order.Order, error)
	HandleEvent(ctx context.Context, ev *Event) error
	Refund(ctx context.Context, actor access.Actor, input RefundInput) (*RefundResult, error)
}

type service struct {
	orders    OrderStore
	gateway   Gateway
	publisher events.Publisher
	topic     string
	currency  string
}

type Options struct {
	Currency  string
	Publisher events.Publisher
	Topic     string
}

func NewService(orders OrderStore, gateway Gateway, opts Options) Service {
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &service{
		orders:    orders,
		gateway:   gateway,
		publisher: opts.Publisher,
		topic:     opts.Topic,
		currency:  strings.ToLower(opts.Currency),
	}
}

type paymentEvent struct {
	OrderID         uint            `json:"orderId"`
	OrderNumber     string          `json:"orderNumber,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	RefundID        string          `json:"refundId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Source          string          `json:"source"`
}

var (
	processing = order.StatusProcessing
	cancelled  = order.StatusCancelled
)

func paidTransition(intentID string) order.PaymentTransition {
	return order.PaymentTransition{
		From:      []order.PaymentStatus{order.PaymentPending},
		To:        order.PaymentPaid,
		PaymentID: &intentID,
		Status:    &processing,
	}
}

// chargeRecorded reports whether o already reflects a succeeded intent.
func chargeRecorded(o *order.Order, intentID string) bool {
	if o.PaymentID == nil || *o.PaymentID != intentID {
		return false
	}
	return o.PaymentStatus == order.PaymentPaid || o.PaymentStatus == order.PaymentRefunded
}

// loadOwned answers NotFound both for missing orders and for orders owned by
// someone other than actor.
func (s *service) loadOwned(ctx context.Context, actor access.Actor, orderID uint) (*order.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderIDRequired
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperror.Internal("load order", err)
	}
	if !access.Allow(actor, access.ActionPaymentStart, o.UserID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, actor access.Actor, orderID uint) (*IntentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreatePaymentIntent"),
		zap.Uint("order_id", orderID),
	)

	o, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == order.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, IntentRequest{
		Amount:      ToMinorUnits(o.TotalAmount),
		Currency:    s.currency,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
	})
	if err != nil {
		log.Error("payment intent creation failed", zap.Error(err))
		return nil, apperror.ExternalService("create payment intent", err)
	}

	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          FromMinorUnits(intent.Amount),
		Currency:        intent.Currency,
	}, nil
}

// ConfirmPayment is the optimistic client path: the provider is asked for the
// intent's status and the order is marked paid only if it succeeded.
func (s *service) ConfirmPayment(ctx context.Context, actor access.Actor, orderID uint, intentID string) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
		zap.Uint("order_id", orderID),
		zap.String("intent_id", intentID),
	)

	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, ErrIntentIDRequired
	}

	o, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		log.Error("payment intent lookup failed", zap.Error(err))
		return nil, apperror.ExternalService("retrieve payment intent", err)
	}

	if id, ok := intent.Metadata["orderId"]; ok && id != strconv.FormatUint(uint64(o.ID), 10) {
		log.Warn("payment intent bound to another order", zap.String("intent_order_id", id))
		return nil, ErrIntentMismatch
	}

	if intent.Status != IntentSucceeded {
		log.Info("payment not yet succeeded", zap.String("status", intent.Status))
		metrics.RecordPaymentEvent("confirm", "not_succeeded")
		return nil, ErrPaymentNotDone
	}

	applied, err := s.orders.TransitionPayment(ctx, o.ID, paidTransition(intent.ID))
	if err != nil {
		metrics.RecordPaymentEvent("confirm", "error")
		return nil, apperror.Internal("mark order paid", err)
	}

	if applied {
		metrics.RecordPaymentEvent("confirm", "applied")
		log.Info("order marked paid")
		s.publish(ctx, events.TypePaymentSucceeded, o, paymentEvent{
			OrderID:         o.ID,
			OrderNumber:     o.OrderNumber,
			PaymentIntentID: intent.ID,
			Amount:          FromMinorUnits(intent.Amount),
			Source:          "confirm",
		})
	}

	updated, err := s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, apperror.Internal("reload order", err)
	}

	if !applied {
		if !chargeRecorded(updated, intent.ID) {
			metrics.RecordPaymentEvent("confirm", "unrecorded")
			log.Error("payment succeeded but order could not be marked paid",
				zap.String("payment_status", string(updated.PaymentStatus)),
				zap.Int64("amount", intent.Amount),
			)
			return nil, ErrPaymentUnrecorded
		}
		metrics.RecordPaymentEvent("confirm", "duplicate")
	}
	return updated, nil
}

// HandleEvent applies a verified webhook. Unknown event types, intents
// without an order reference and unknown orders are acknowledged without
// effect; transitions only fire from pending so redelivery is a no-op.
func (s *service) HandleEvent(ctx context.Context, ev *Event) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandleEvent"),
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
	)

	var (
		transition order.PaymentTransition
		eventType  string
	)
	switch ev.Type {
	case EventIntentSucceeded:
		eventType = events.TypePaymentSucceeded
	case EventIntentFailed:
		eventType = events.TypePaymentFailed
	default:
		log.Debug("ignoring webhook event")
		metrics.RecordPaymentEvent(ev.Type, "ignored")
		return nil
	}

	if ev.Intent == nil {
		log.Warn("webhook event without payment intent")
		metrics.RecordPaymentEvent(ev.Type, "ignored")
		return nil
	}

	orderID, err := strconv.ParseUint(ev.Intent.Metadata["orderId"], 10, 64)
	if err != nil || orderID == 0 {
		log.Warn("payment intent carries no order id", zap.String("intent_id", ev.Intent.ID))
		metrics.RecordPaymentEvent(ev.Type, "ignored")
		return nil
	}

	o, err := s.orders.GetByID(ctx, uint(orderID))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			log.Warn("webhook for unknown order", zap.Uint64("order_id", orderID))
			metrics.RecordPaymentEvent(ev.Type, "ignored")
			return nil
		}
		metrics.RecordPaymentEvent(ev.Type, "error")
		return apperror.Internal("load order", err)
	}

	intentID := ev.Intent.ID
	if ev.Type == EventIntentSucceeded {
		transition = paidTransition(intentID)
	} else {
		transition = order.PaymentTransition{
			From:      []order.PaymentStatus{order.PaymentPending},
			To:        order.PaymentFailed,
			PaymentID: &intentID,
		}
	}

	applied, err := s.orders.TransitionPayment(ctx, o.ID, transition)
	if err != nil {
		metrics.RecordPaymentEvent(ev.Type, "error")
		return apperror.Internal("apply payment event", err)
	}
	if !applied {
		if ev.Type == EventIntentSucceeded {
			current, err := s.orders.GetByID(ctx, o.ID)
			if err != nil {
				metrics.RecordPaymentEvent(ev.Type, "error")
				return apperror.Internal("reload order", err)
			}
			if !chargeRecorded(current, intentID) {
				// retrying cannot change the outcome; acknowledged for manual reconciliation
				log.Error("payment succeeded but order could not be marked paid",
					zap.Uint("order_id", o.ID),
					zap.String("intent_id", intentID),
					zap.String("payment_status", string(current.PaymentStatus)),
					zap.Int64("amount", ev.Intent.Amount),
				)
				metrics.RecordPaymentEvent(ev.Type, "unrecorded")
				return nil
			}
		}
		log.Info("payment event already reflected", zap.String("payment_status", string(o.PaymentStatus)))
		metrics.RecordPaymentEvent(ev.Type, "duplicate")
		return nil
	}

	metrics.RecordPaymentEvent(ev.Type, "applied")
	log.Info("payment event applied", zap.Uint("order_id", o.ID), zap.String("to", string(transition.To)))

	s.publish(ctx, eventType, o, paymentEvent{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PaymentIntentID: intentID,
		Amount:          FromMinorUnits(ev.Intent.Amount),
		Source:          "webhook",
	})
	return nil
}

func refundKey(orderID uint, paymentID string) string {
	return "refund-" + strconv.FormatUint(uint64(orderID), 10) + "-" + paymentID
}

func (s *service) Refund(ctx context.Context, actor access.Actor, input RefundInput) (*RefundResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Refund"),
		zap.Uint("order_id", input.OrderID),
	)

	if !access.Allow(actor, access.ActionPaymentRefund, 0) {
		return nil, ErrForbidden
	}
	if input.OrderID == 0 {
		return nil, ErrOrderIDRequired
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	o, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperror.Internal("load order", err)
	}
	if o.PaymentStatus != order.PaymentPaid {
		return nil, ErrNotPaid
	}
	if o.PaymentID == nil || *o.PaymentID == "" {
		return nil, ErrNoPaymentID
	}

	amount := o.TotalAmount
	if input.Amount != nil {
		amount = *input.Amount
	}
	if !amount.IsPositive() || amount.GreaterThan(o.TotalAmount) {
		return nil, ErrInvalidAmount
	}

	// one refund per recorded payment: concurrent requests share the key and
	// the provider answers them with the same refund
	refund, err := s.gateway.CreateRefund(ctx, RefundRequest{
		PaymentIntentID: *o.PaymentID,
		Amount:          ToMinorUnits(amount),
		OrderID:         o.ID,
		Reason:          reason,
		IdempotencyKey:  refundKey(o.ID, *o.PaymentID),
	})
	if err != nil {
		metrics.RecordRefund("error")
		log.Error("refund request failed", zap.Error(err))
		return nil, apperror.ExternalService("create refund", err)
	}
	metrics.RecordRefund(refund.Status)

	result := &RefundResult{
		RefundID: refund.ID,
		Amount:   FromMinorUnits(refund.Amount),
		Status:   refund.Status,
	}

	if !refund.Accepted() {
		log.Warn("refund rejected by provider", zap.String("refund_id", refund.ID), zap.String("status", refund.Status))
		return nil, apperror.ExternalService("refund rejected", errors.New("provider status "+refund.Status))
	}

	adminID := actor.UserID
	applied, err := s.orders.TransitionPayment(ctx, o.ID, order.PaymentTransition{
		From:         []order.PaymentStatus{order.PaymentPaid},
		To:           order.PaymentRefunded,
		Status:       &cancelled,
		CancelledBy:  &adminID,
		CancelReason: &reason,
	})
	if err != nil {
		// the provider already moved the money; surface loudly for reconciliation
		log.Error("refund accepted but order not updated",
			zap.String("refund_id", refund.ID),
			zap.Error(err),
		)
		return nil, apperror.Internal("mark order refunded", err)
	}
	if !applied {
		log.Warn("order left paid state before refund was recorded", zap.String("refund_id", refund.ID))
		return nil, ErrRefundConflict
	}

	log.Info("order refunded", zap.String("refund_id", refund.ID), zap.String("amount", result.Amount.StringFixed(2)))
	s.publish(ctx, events.TypePaymentRefunded, o, paymentEvent{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PaymentIntentID: *o.PaymentID,
		RefundID:        refund.ID,
		Amount:          result.Amount,
		Source:          "refund",
	})

	return result, nil
}

func (s *service) publish(ctx context.Context, eventType string, o *order.Order, data paymentEvent) {
	events.PublishAsync(ctx, s.publisher, s.topic, events.New(eventType, o.OrderNumber, data))
}
