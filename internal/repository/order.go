package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline/carstore-api/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error

	InsertCancelled(ctx context.Context, co *model.CancelledOrder) error
	ListCancelledByUser(ctx context.Context, userID uuid.UUID) ([]model.CancelledOrder, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, user_id, product_id, product_name, product_image, quantity,
	unit_price, delivery_charge, total, address, payment_method, payment_details,
	status, purchased_at, delivery_from, delivery_until`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.ProductID, &o.ProductName, &o.ProductImage, &o.Quantity,
		&o.UnitPrice, &o.DeliveryCharge, &o.Total, &o.Address, &o.PaymentMethod,
		&o.PaymentDetails, &o.Status, &o.PurchasedAt, &o.DeliveryFrom, &o.DeliveryUntil,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	order.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		order.ID, order.UserID, order.ProductID, order.ProductName, order.ProductImage,
		order.Quantity, order.UnitPrice, order.DeliveryCharge, order.Total, order.Address,
		order.PaymentMethod, order.PaymentDetails, order.Status, order.PurchasedAt,
		order.DeliveryFrom, order.DeliveryUntil,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListByUser returns the user's orders oldest-first, so new orders append at
// the end of the list. A non-zero since filters to purchased_at >= since.
func (r *pgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE user_id = $1 AND ($2::timestamptz IS NULL OR purchased_at >= $2)
		 ORDER BY purchased_at`,
		userID, nullableTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *pgOrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY purchased_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.ProductID, &o.ProductName, &o.ProductImage, &o.Quantity,
			&o.UnitPrice, &o.DeliveryCharge, &o.Total, &o.Address, &o.PaymentMethod,
			&o.PaymentDetails, &o.Status, &o.PurchasedAt, &o.DeliveryFrom, &o.DeliveryUntil,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *pgOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) InsertCancelled(ctx context.Context, co *model.CancelledOrder) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cancelled_orders (`+orderColumns+`, cancel_reason, cancelled_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		co.ID, co.UserID, co.ProductID, co.ProductName, co.ProductImage, co.Quantity,
		co.UnitPrice, co.DeliveryCharge, co.Total, co.Address, co.PaymentMethod,
		co.PaymentDetails, co.Status, co.PurchasedAt, co.DeliveryFrom, co.DeliveryUntil,
		co.CancelReason, co.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("insert cancelled order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) ListCancelledByUser(ctx context.Context, userID uuid.UUID) ([]model.CancelledOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`, cancel_reason, cancelled_at
		 FROM cancelled_orders WHERE user_id = $1 ORDER BY cancelled_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cancelled orders: %w", err)
	}
	defer rows.Close()

	var cancelled []model.CancelledOrder
	for rows.Next() {
		var co model.CancelledOrder
		if err := rows.Scan(
			&co.ID, &co.UserID, &co.ProductID, &co.ProductName, &co.ProductImage, &co.Quantity,
			&co.UnitPrice, &co.DeliveryCharge, &co.Total, &co.Address, &co.PaymentMethod,
			&co.PaymentDetails, &co.Status, &co.PurchasedAt, &co.DeliveryFrom, &co.DeliveryUntil,
			&co.CancelReason, &co.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan cancelled order: %w", err)
		}
		cancelled = append(cancelled, co)
	}
	return cancelled, nil
}
