package testutil

import (
	"context"
	"maps"

	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/types"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	Faults
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	stored := *c
	stored.Metadata = maps.Clone(c.Metadata)
	return s.InMemoryStore.Create(ctx, c.ID, &stored)
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *c
	out.Metadata = maps.Clone(c.Metadata)
	return &out, nil
}

func (s *InMemoryCustomerStore) UpdateMetadata(ctx context.Context, id string, metadata types.Metadata) error {
	if err := s.fault("UpdateMetadata"); err != nil {
		return err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := *c
	updated.Metadata = maps.Clone(metadata)
	return s.InMemoryStore.Update(ctx, id, &updated)
}
