package order

import (
	"context"
	"errors"
	"strings"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/events"
	"mshop-be/internal/logger"
	"mshop-be/internal/metrics"
	"mshop-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error)
	ListOrders(ctx context.Context, userID uint, q ListQuery) ([]*Order, utils.Pagination, error)
	GetOrder(ctx context.Context, actor access.Actor, id uint) (*Order, error)
	UpdateOrder(ctx context.Context, actor access.Actor, id uint, patch UpdatePatch) (*Order, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	topic     string
}

func NewService(repo Repository, publisher events.Publisher, topic string) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, publisher: publisher, topic: topic}
}

type orderCreated struct {
	OrderID     uint            `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uint            `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []Item          `json:"items"`
}

func validateCreate(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return ErrEmptyItems
	}
	if input.ShippingAddress == nil {
		return ErrMissingAddress
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return apperror.InvalidRequest("shipping " + err.Error())
	}
	if input.BillingAddress != nil {
		if err := input.BillingAddress.Validate(); err != nil {
			return apperror.InvalidRequest("billing " + err.Error())
		}
	}
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	billing := *input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}

	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	totals := CalculateTotals(input.Items)

	o := &Order{
		OrderNumber:     utils.GenerateOrderNumber(),
		UserID:          userID,
		Items:           input.Items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		TotalAmount:     totals.Total,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   method,
		ShippingAddress: *input.ShippingAddress,
		BillingAddress:  billing,
		Notes:           input.Notes,
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		if errors.Is(err, ErrUnknownProduct) || errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error("failed to create order", zap.Error(err))
		return nil, apperror.Internal("create order", err)
	}

	metrics.RecordOrderCreated()
	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)

	events.PublishAsync(ctx, s.publisher, s.topic, events.New(
		events.TypeOrderCreated,
		o.OrderNumber,
		orderCreated{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			TotalAmount: o.TotalAmount,
			Items:       o.Items,
		},
	))

	created, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		// the order is committed; answer with what we wrote
		log.Warn("failed to reload created order", zap.Uint("order_id", o.ID), zap.Error(err))
		return o, nil
	}
	return created, nil
}

// ParseStatusFilter accepts an empty filter or any known status, case-insensitively.
func ParseStatusFilter(raw string) (*OrderStatus, error) {
	if raw == "" {
		return nil, nil
	}
	st := OrderStatus(strings.ToLower(raw))
	if !st.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &st, nil
}

// ListOrders returns the caller's own orders, newest first.
func (s *service) ListOrders(ctx context.Context, userID uint, q ListQuery) ([]*Order, utils.Pagination, error) {
	status, err := ParseStatusFilter(q.Status)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	page, limit := utils.NormalizePage(q.Page, q.Limit)
	orders, total, err := s.repo.List(ctx, ListFilter{
		UserID: &userID,
		Status: status,
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	})
	if err != nil {
		return nil, utils.Pagination{}, apperror.Internal("list orders", err)
	}

	return orders, utils.NewPagination(page, limit, total), nil
}

// GetOrder answers NotFound for orders owned by someone else.
func (s *service) GetOrder(ctx context.Context, actor access.Actor, id uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("get order", err)
	}
	if !access.Allow(actor, access.ActionOrderRead, o.UserID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) UpdateOrder(ctx context.Context, actor access.Actor, id uint, patch UpdatePatch) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrder"),
		zap.Uint("order_id", id),
	)

	if patch.empty() {
		return nil, ErrNothingToUpdate
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("get order", err)
	}

	if !access.Allow(actor, access.ActionOrderUpdate, current.UserID) {
		log.Warn("order update denied", zap.Uint("owner_id", current.UserID))
		return nil, ErrForbidden
	}

	if err := s.repo.Update(ctx, id, patch, actor.UserID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("update order", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("reload order", err)
	}

	log.Info("order updated", zap.String("status", string(updated.Status)))
	return updated, nil
}
