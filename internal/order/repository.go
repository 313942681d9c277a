package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"mshop-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
	Update(ctx context.Context, id uint, patch UpdatePatch, actorID uint) error
	TransitionPayment(ctx context.Context, id uint, t PaymentTransition) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT
		o.id, o.order_number, o.user_id,
		o.subtotal, o.tax, o.shipping, o.discount, o.total_amount,
		o.status, o.payment_status, o.payment_method, o.payment_id,
		o.shipping_address, o.billing_address, o.notes,
		o.tracking_number, o.estimated_delivery,
		o.cancelled_at, o.cancelled_by, o.cancel_reason,
		o.created_at, o.updated_at,
		u.name, u.email
	FROM orders o
	JOIN users u ON u.id = o.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o     Order
		owner Owner
	)
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.TotalAmount,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentID,
		&o.ShippingAddress, &o.BillingAddress, &o.Notes,
		&o.TrackingNumber, &o.EstimatedDelivery,
		&o.CancelledAt, &o.CancelledBy, &o.CancelReason,
		&o.CreatedAt, &o.UpdatedAt,
		&owner.Name, &owner.Email,
	); err != nil {
		return nil, err
	}
	owner.ID = o.UserID
	o.User = &owner
	o.Items = []Item{}
	return &o, nil
}

// CreateOrderTx inserts the order and its items and takes the stock, all or
// nothing. Stock rows are touched in product id order so concurrent
// checkouts over the same products cannot deadlock.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_number", o.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// 1. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, user_id,
			subtotal, tax, shipping, discount, total_amount,
			status, payment_status, payment_method,
			shipping_address, billing_address, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber, o.UserID,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.TotalAmount,
		o.Status, o.PaymentStatus, o.PaymentMethod,
		o.ShippingAddress, o.BillingAddress, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("db: failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	// 2. Take stock
	lockOrder := make([]int, len(o.Items))
	for i := range lockOrder {
		lockOrder[i] = i
	}
	sort.SliceStable(lockOrder, func(a, b int) bool {
		return o.Items[lockOrder[a]].ProductID < o.Items[lockOrder[b]].ProductID
	})

	for _, idx := range lockOrder {
		item := o.Items[idx]
		if err := decrementStock(ctx, tx, item); err != nil {
			log.Info("stock decrement rejected",
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			return err
		}
	}

	// 3. Insert items
	for pos, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, quantity, price)
			VALUES ($1,$2,$3,$4,$5)
		`, o.ID, pos, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			log.Error("db: failed to insert order item", zap.Int("position", pos), zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func decrementStock(ctx context.Context, tx *sql.Tx, item Item) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND is_active = TRUE AND stock >= $1
	`, item.Quantity, item.ProductID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND is_active = TRUE)`,
		item.ProductID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ErrUnknownProduct
	}
	return ErrInsufficientStock
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d",
		orderSelect, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uint]*Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, int64(o.ID))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uint
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *repository) Update(ctx context.Context, id uint, patch UpdatePatch, actorID uint) error {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.Status != nil {
		set("status", *patch.Status)
		if *patch.Status == StatusCancelled {
			sets = append(sets, "cancelled_at = NOW()")
			set("cancelled_by", actorID)
		}
	}
	if patch.TrackingNumber != nil {
		set("tracking_number", *patch.TrackingNumber)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// TransitionPayment applies t with a compare-and-set on payment_status and
// reports whether a row changed. false means the order was missing or had
// already left every From state, which callers treat as a duplicate.
func (r *repository) TransitionPayment(ctx context.Context, id uint, t PaymentTransition) (bool, error) {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	set("payment_status", t.To)
	if t.PaymentID != nil {
		set("payment_id", *t.PaymentID)
	}
	if t.Status != nil {
		set("status", *t.Status)
	}
	if t.CancelledBy != nil {
		sets = append(sets, "cancelled_at = NOW()")
		set("cancelled_by", *t.CancelledBy)
	}
	if t.CancelReason != nil {
		set("cancel_reason", *t.CancelReason)
	}
	sets = append(sets, "updated_at = NOW()")

	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d AND payment_status = ANY($%d)",
		strings.Join(sets, ", "), argIndex, argIndex+1)
	args = append(args, id, pq.Array(from))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition payment: %w", err)
	}
	return n > 0, nil
}
