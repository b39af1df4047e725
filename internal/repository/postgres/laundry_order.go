package postgres

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

type laundryOrderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLaundryOrderRepository(db *postgres.DB, logger *logger.Logger) laundryorder.Repository {
	return &laundryOrderRepository{db: db, logger: logger}
}

func (r *laundryOrderRepository) Create(ctx context.Context, o *laundryorder.LaundryOrder) error {
	query := `
		INSERT INTO laundry_orders (
			id,
			subscription_id,
			customer_id,
			shipping_address_id,
			status,
			placed_at,
			created_at
		) VALUES (
			:id,
			:subscription_id,
			:customer_id,
			:shipping_address_id,
			:status,
			:placed_at,
			:created_at
		)
	`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, o)
	return mapError(err, "laundry order", map[string]any{"subscription_id": o.SubscriptionID})
}

func (r *laundryOrderRepository) GetLatestBySubscriptionID(ctx context.Context, subscriptionID string) (*laundryorder.LaundryOrder, error) {
	query := `
		SELECT * FROM laundry_orders
		WHERE subscription_id = $1
		ORDER BY placed_at DESC
		LIMIT 1
	`

	var o laundryorder.LaundryOrder
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &o, query, subscriptionID); err != nil {
		return nil, mapError(err, "laundry order", map[string]any{"subscription_id": subscriptionID})
	}
	return &o, nil
}
