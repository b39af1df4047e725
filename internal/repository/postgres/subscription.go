package postgres

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/subscription"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			stripe_subscription_id,
			status,
			current_period_start,
			current_period_end,
			product_id,
			customer_id,
			created_at,
			updated_at
		) VALUES (
			:id,
			:stripe_subscription_id,
			:status,
			:current_period_start,
			:current_period_end,
			:product_id,
			:customer_id,
			:created_at,
			:updated_at
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"stripe_subscription_id", sub.StripeSubscriptionID,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub)
	return mapError(err, "subscription", map[string]any{
		"stripe_subscription_id": sub.StripeSubscriptionID,
	})
}

func (r *subscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE stripe_subscription_id = $1
	`

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, stripeSubscriptionID); err != nil {
		return nil, mapError(err, "subscription", map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
		})
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			status = :status,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub)
	return mapError(err, "subscription", map[string]any{"subscription_id": sub.ID})
}

func (r *subscriptionRepository) DeleteByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) error {
	query := `DELETE FROM subscriptions WHERE stripe_subscription_id = $1`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, stripeSubscriptionID)
	return mapError(err, "subscription", map[string]any{
		"stripe_subscription_id": stripeSubscriptionID,
	})
}
