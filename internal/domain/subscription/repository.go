package subscription

import "context"

// Repository defines the interface for subscription persistence
type Repository interface {
	// Create inserts the subscription; a duplicate gateway id is marked ErrAlreadyExists
	Create(ctx context.Context, sub *Subscription) error
	// GetByStripeSubscriptionID returns the row or an error marked ErrNotFound
	GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	DeleteByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) error
}
