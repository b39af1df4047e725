package postgres

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

type cartRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCartRepository(db *postgres.DB, logger *logger.Logger) cart.Repository {
	return &cartRepository{db: db, logger: logger}
}

func (r *cartRepository) Get(ctx context.Context, id string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.GetQuerier(ctx).GetContext(ctx, &c, `SELECT * FROM carts WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "cart", map[string]any{"cart_id": id})
	}
	return &c, nil
}

func (r *cartRepository) ListItems(ctx context.Context, cartID string) ([]*cart.LineItem, error) {
	query := `
		SELECT * FROM cart_line_items
		WHERE cart_id = $1
		ORDER BY id
	`

	var items []*cart.LineItem
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &items, query, cartID); err != nil {
		return nil, mapError(err, "cart line item", map[string]any{"cart_id": cartID})
	}
	return items, nil
}

func (r *cartRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	query := `
		UPDATE carts
		SET
			completed_at = $2,
			updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, completedAt)
	return mapError(err, "cart", map[string]any{"cart_id": id})
}

func (r *cartRepository) SetPaymentIntentID(ctx context.Context, id, paymentIntentID string) error {
	query := `
		UPDATE carts
		SET
			payment_intent_id = $2,
			updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, paymentIntentID, time.Now().UTC())
	return mapError(err, "cart", map[string]any{"cart_id": id})
}
