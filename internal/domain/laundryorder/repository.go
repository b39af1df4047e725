package laundryorder

import "context"

type Repository interface {
	Create(ctx context.Context, order *LaundryOrder) error
	// GetLatestBySubscriptionID returns the most recently placed order, or ErrNotFound
	GetLatestBySubscriptionID(ctx context.Context, subscriptionID string) (*LaundryOrder, error)
}
