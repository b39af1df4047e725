package testutil

import (
	"context"
	"sync"

	"github.com/laundrybox/reconciler/internal/domain/subscription"
	ierr "github.com/laundrybox/reconciler/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository. Rows are
// keyed by stripe subscription id so the uniqueness holds under concurrency.
type InMemorySubscriptionStore struct {
	Faults
	*InMemoryStore[*subscription.Subscription]
	createMu sync.Mutex
	// BeforeCreate, when set, runs after the fault check and before the insert
	BeforeCreate func(ctx context.Context, sub *subscription.Subscription)
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.fault("Create"); err != nil {
		return err
	}
	if s.BeforeCreate != nil {
		s.BeforeCreate(ctx, sub)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	stored := *sub
	if err := s.InMemoryStore.Create(ctx, sub.StripeSubscriptionID, &stored); err != nil {
		return ierr.WithError(err).
			WithHintf("Subscription %s already exists", sub.StripeSubscriptionID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemorySubscriptionStore) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	if err := s.fault("GetByStripeSubscriptionID"); err != nil {
		return nil, err
	}
	sub, err := s.InMemoryStore.Get(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.fault("Update"); err != nil {
		return err
	}
	stored := *sub
	return s.InMemoryStore.Update(ctx, sub.StripeSubscriptionID, &stored)
}

func (s *InMemorySubscriptionStore) DeleteByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) error {
	if err := s.fault("DeleteByStripeSubscriptionID"); err != nil {
		return err
	}
	err := s.InMemoryStore.Delete(ctx, stripeSubscriptionID)
	if ierr.IsNotFound(err) {
		return nil
	}
	return err
}
