package postgres

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
	"github.com/laundrybox/reconciler/internal/types"
)

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, `SELECT * FROM customers WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "customer", map[string]any{"customer_id": id})
	}
	return &c, nil
}

func (r *customerRepository) UpdateMetadata(ctx context.Context, id string, metadata types.Metadata) error {
	query := `
		UPDATE customers
		SET
			metadata = $2,
			updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, metadata, time.Now().UTC())
	return mapError(err, "customer", map[string]any{"customer_id": id})
}
