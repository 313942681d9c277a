package admin

import (
	"context"
	"database/sql"
	"fmt"

	"mshop-be/internal/logger"
	"mshop-be/internal/order"

	"go.uber.org/zap"
)

type Repository interface {
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Stats counts active products only; revenue sums paid orders.
func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Stats"),
	)

	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'paid'),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending')
	`).Scan(&s.TotalUsers, &s.TotalProducts, &s.TotalOrders, &s.TotalRevenue, &s.PendingOrders)
	if err != nil {
		log.Error("failed to load totals", zap.Error(err))
		return nil, fmt.Errorf("load totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		log.Error("failed to group orders", zap.Error(err))
		return nil, fmt.Errorf("group orders by status: %w", err)
	}
	defer rows.Close()

	s.OrdersByStatus = make(map[order.OrderStatus]int64)
	for rows.Next() {
		var (
			status order.OrderStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		s.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return &s, nil
}
