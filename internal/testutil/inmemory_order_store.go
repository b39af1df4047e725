package testutil

import (
	"context"
	"sync"

	"github.com/laundrybox/reconciler/internal/domain/order"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/types"
)

// InMemoryOrderStore implements order.Repository with a unique cart_id
type InMemoryOrderStore struct {
	Faults
	*InMemoryStore[*order.Order]
	createMu sync.Mutex
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func (s *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	if err := s.fault("Create"); err != nil {
		return err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if s.Count(ctx, func(_ context.Context, existing *order.Order) bool {
		return existing.CartID == o.CartID
	}) > 0 {
		return ierr.NewErrorf("order for cart %s already exists", o.CartID).
			WithHint("An order already exists for this cart").
			Mark(ierr.ErrAlreadyExists)
	}

	stored := *o
	return s.InMemoryStore.Create(ctx, o.ID, &stored)
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

func (s *InMemoryOrderStore) GetByCartID(ctx context.Context, cartID string) (*order.Order, error) {
	if err := s.fault("GetByCartID"); err != nil {
		return nil, err
	}
	o, err := s.Find(ctx, func(_ context.Context, o *order.Order) bool {
		return o.CartID == cartID
	}, nil)
	if err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

func (s *InMemoryOrderStore) UpdatePaymentStatus(ctx context.Context, id string, status types.OrderPaymentStatus) error {
	if err := s.fault("UpdatePaymentStatus"); err != nil {
		return err
	}
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := *o
	updated.PaymentStatus = status
	return s.InMemoryStore.Update(ctx, id, &updated)
}
