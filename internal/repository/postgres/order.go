package postgres

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/order"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
	"github.com/laundrybox/reconciler/internal/types"
)

type orderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			id,
			cart_id,
			customer_id,
			payment_status,
			payment_intent_id,
			total,
			currency_code,
			created_at,
			updated_at
		) VALUES (
			:id,
			:cart_id,
			:customer_id,
			:payment_status,
			:payment_intent_id,
			:total,
			:currency_code,
			:created_at,
			:updated_at
		)
	`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, o)
	return mapError(err, "order", map[string]any{"cart_id": o.CartID})
}

func (r *orderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "order", map[string]any{"order_id": id})
	}
	return &o, nil
}

func (r *orderRepository) GetByCartID(ctx context.Context, cartID string) (*order.Order, error) {
	var o order.Order
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &o, `SELECT * FROM orders WHERE cart_id = $1`, cartID); err != nil {
		return nil, mapError(err, "order", map[string]any{"cart_id": cartID})
	}
	return &o, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id string, status types.OrderPaymentStatus) error {
	query := `
		UPDATE orders
		SET
			payment_status = $2,
			updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, status, time.Now().UTC())
	return mapError(err, "order", map[string]any{"order_id": id})
}
