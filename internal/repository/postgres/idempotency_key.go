package postgres

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

type idempotencyKeyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewIdempotencyKeyRepository(db *postgres.DB, logger *logger.Logger) idempotencykey.Repository {
	return &idempotencyKeyRepository{db: db, logger: logger}
}

func (r *idempotencyKeyRepository) Get(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error) {
	query := `
		SELECT * FROM idempotency_keys
		WHERE
			request_path = $1 AND
			idempotency_key = $2
	`

	var k idempotencykey.IdempotencyKey
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &k, query, requestPath, key); err != nil {
		return nil, mapError(err, "idempotency key", map[string]any{
			"request_path":    requestPath,
			"idempotency_key": key,
		})
	}
	return &k, nil
}

func (r *idempotencyKeyRepository) Create(ctx context.Context, k *idempotencykey.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (
			id,
			request_path,
			idempotency_key,
			recovery_point,
			locked_at,
			response_code,
			response_body,
			created_at,
			updated_at
		) VALUES (
			:id,
			:request_path,
			:idempotency_key,
			:recovery_point,
			:locked_at,
			:response_code,
			:response_body,
			:created_at,
			:updated_at
		)
	`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, k)
	return mapError(err, "idempotency key", map[string]any{
		"request_path":    k.RequestPath,
		"idempotency_key": k.IdempotencyKey,
	})
}

func (r *idempotencyKeyRepository) Update(ctx context.Context, k *idempotencykey.IdempotencyKey) error {
	query := `
		UPDATE idempotency_keys
		SET
			recovery_point = :recovery_point,
			locked_at = :locked_at,
			response_code = :response_code,
			response_body = :response_body,
			updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, k)
	return mapError(err, "idempotency key", map[string]any{"id": k.ID})
}
