package testutil

import (
	"context"
	"fmt"

	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	ierr "github.com/laundrybox/reconciler/internal/errors"
)

// InMemoryIdempotencyKeyStore implements idempotencykey.Repository
type InMemoryIdempotencyKeyStore struct {
	Faults
	*InMemoryStore[*idempotencykey.IdempotencyKey]
}

func NewInMemoryIdempotencyKeyStore() *InMemoryIdempotencyKeyStore {
	return &InMemoryIdempotencyKeyStore{
		InMemoryStore: NewInMemoryStore[*idempotencykey.IdempotencyKey](),
	}
}

func idempotencyStoreKey(path, key string) string {
	return fmt.Sprintf("%s|%s", path, key)
}

func copyIdempotencyKey(k *idempotencykey.IdempotencyKey) *idempotencykey.IdempotencyKey {
	c := *k
	return &c
}

func (s *InMemoryIdempotencyKeyStore) Get(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	k, err := s.InMemoryStore.Get(ctx, idempotencyStoreKey(requestPath, key))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Idempotency key %s not found", key).
			Mark(ierr.ErrNotFound)
	}
	return copyIdempotencyKey(k), nil
}

func (s *InMemoryIdempotencyKeyStore) Create(ctx context.Context, key *idempotencykey.IdempotencyKey) error {
	if err := s.fault("Create"); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, idempotencyStoreKey(key.RequestPath, key.IdempotencyKey), copyIdempotencyKey(key))
}

func (s *InMemoryIdempotencyKeyStore) Update(ctx context.Context, key *idempotencykey.IdempotencyKey) error {
	if err := s.fault("Update"); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, idempotencyStoreKey(key.RequestPath, key.IdempotencyKey), copyIdempotencyKey(key))
}
