package testutil

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
)

// InMemoryLaundryOrderStore implements laundryorder.Repository
type InMemoryLaundryOrderStore struct {
	Faults
	*InMemoryStore[*laundryorder.LaundryOrder]
}

func NewInMemoryLaundryOrderStore() *InMemoryLaundryOrderStore {
	return &InMemoryLaundryOrderStore{
		InMemoryStore: NewInMemoryStore[*laundryorder.LaundryOrder](),
	}
}

func (s *InMemoryLaundryOrderStore) Create(ctx context.Context, o *laundryorder.LaundryOrder) error {
	if err := s.fault("Create"); err != nil {
		return err
	}
	stored := *o
	return s.InMemoryStore.Create(ctx, o.ID, &stored)
}

func (s *InMemoryLaundryOrderStore) GetLatestBySubscriptionID(ctx context.Context, subscriptionID string) (*laundryorder.LaundryOrder, error) {
	if err := s.fault("GetLatestBySubscriptionID"); err != nil {
		return nil, err
	}
	o, err := s.Find(ctx, func(_ context.Context, o *laundryorder.LaundryOrder) bool {
		return o.SubscriptionID == subscriptionID
	}, func(a, b *laundryorder.LaundryOrder) bool {
		return a.PlacedAt.After(b.PlacedAt)
	})
	if err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

// ListBySubscriptionID returns every order for the subscription, oldest first
func (s *InMemoryLaundryOrderStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) []*laundryorder.LaundryOrder {
	return s.List(ctx, func(_ context.Context, o *laundryorder.LaundryOrder) bool {
		return o.SubscriptionID == subscriptionID
	}, func(a, b *laundryorder.LaundryOrder) bool {
		return a.PlacedAt.Before(b.PlacedAt)
	})
}
