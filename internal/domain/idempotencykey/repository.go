package idempotencykey

import "context"

// Repository defines the interface for idempotency key persistence
type Repository interface {
	// Get returns the key for the pair, or an error marked ErrNotFound
	Get(ctx context.Context, requestPath, key string) (*IdempotencyKey, error)
	// Create inserts the key; a concurrent duplicate is marked ErrAlreadyExists
	Create(ctx context.Context, key *IdempotencyKey) error
	Update(ctx context.Context, key *IdempotencyKey) error
}
