package postgres

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

type paymentCollectionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentCollectionRepository(db *postgres.DB, logger *logger.Logger) paymentcollection.Repository {
	return &paymentCollectionRepository{db: db, logger: logger}
}

func (r *paymentCollectionRepository) Get(ctx context.Context, id string) (*paymentcollection.PaymentCollection, error) {
	var c paymentcollection.PaymentCollection
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, `SELECT * FROM payment_collections WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "payment collection", map[string]any{"payment_collection_id": id})
	}
	return &c, nil
}

func (r *paymentCollectionRepository) ListPayments(ctx context.Context, collectionID string) ([]*paymentcollection.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE payment_collection_id = $1
		ORDER BY created_at
	`

	var payments []*paymentcollection.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, collectionID); err != nil {
		return nil, mapError(err, "payment", map[string]any{"payment_collection_id": collectionID})
	}
	return payments, nil
}

func (r *paymentCollectionRepository) GetPayment(ctx context.Context, paymentID string) (*paymentcollection.Payment, error) {
	var p paymentcollection.Payment
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, paymentID); err != nil {
		return nil, mapError(err, "payment", map[string]any{"payment_id": paymentID})
	}
	return &p, nil
}

func (r *paymentCollectionRepository) MarkPaymentCaptured(ctx context.Context, paymentID string, capturedAt time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET captured_at = $2
		WHERE
			id = $1 AND
			captured_at IS NULL
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, paymentID, capturedAt)
	if err != nil {
		return false, mapError(err, "payment", map[string]any{"payment_id": paymentID})
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err, "payment", map[string]any{"payment_id": paymentID})
	}
	return n == 1, nil
}
