package admin

import (
	"context"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/logger"
	"mshop-be/internal/order"
	"mshop-be/internal/utils"

	"go.uber.org/zap"
)

const recentOrders = 5

var ErrForbidden = apperror.Forbidden("admin role required")

// OrderLister is satisfied by the order repository.
type OrderLister interface {
	List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error)
}

type Service interface {
	Dashboard(ctx context.Context, actor access.Actor) (*Dashboard, error)
	ListOrders(ctx context.Context, actor access.Actor, q order.ListQuery) ([]*order.Order, utils.Pagination, error)
}

type service struct {
	repo   Repository
	orders OrderLister
}

func NewService(repo Repository, orders OrderLister) Service {
	return &service{repo: repo, orders: orders}
}

func (s *service) Dashboard(ctx context.Context, actor access.Actor) (*Dashboard, error) {
	if !access.Allow(actor, access.ActionAdminRead, 0) {
		return nil, ErrForbidden
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal("load dashboard stats", err)
	}

	recent, _, err := s.orders.List(ctx, order.ListFilter{Limit: recentOrders})
	if err != nil {
		return nil, apperror.Internal("load recent orders", err)
	}

	logger.FromCtx(ctx).Debug("dashboard loaded",
		zap.String("layer", "service"),
		zap.Int64("orders", stats.TotalOrders),
	)

	return &Dashboard{Stats: *stats, RecentOrders: recent}, nil
}

// ListOrders lists every customer's orders, newest first.
func (s *service) ListOrders(ctx context.Context, actor access.Actor, q order.ListQuery) ([]*order.Order, utils.Pagination, error) {
	if !access.Allow(actor, access.ActionAdminRead, 0) {
		return nil, utils.Pagination{}, ErrForbidden
	}

	status, err := order.ParseStatusFilter(q.Status)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	page, limit := utils.NormalizePage(q.Page, q.Limit)
	orders, total, err := s.orders.List(ctx, order.ListFilter{
		Status: status,
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	})
	if err != nil {
		return nil, utils.Pagination{}, apperror.Internal("list orders", err)
	}

	return orders, utils.NewPagination(page, limit, total), nil
}
