package testutil

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/samber/lo"
)

// InMemoryCartStore implements cart.Repository
type InMemoryCartStore struct {
	Faults
	*InMemoryStore[*cart.Cart]
	items *InMemoryStore[*cart.LineItem]
}

func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		InMemoryStore: NewInMemoryStore[*cart.Cart](),
		items:         NewInMemoryStore[*cart.LineItem](),
	}
}

// AddCart seeds a cart together with its line items
func (s *InMemoryCartStore) AddCart(ctx context.Context, c *cart.Cart) error {
	stored := *c
	stored.Items = nil
	if err := s.InMemoryStore.Create(ctx, c.ID, &stored); err != nil {
		return err
	}
	for _, item := range c.Items {
		i := *item
		i.CartID = c.ID
		if err := s.items.Create(ctx, item.ID, &i); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryCartStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Cart with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (s *InMemoryCartStore) ListItems(ctx context.Context, cartID string) ([]*cart.LineItem, error) {
	if err := s.fault("ListItems"); err != nil {
		return nil, err
	}
	items := s.items.List(ctx, func(_ context.Context, i *cart.LineItem) bool {
		return i.CartID == cartID
	}, func(a, b *cart.LineItem) bool {
		return a.ID < b.ID
	})
	return lo.Map(items, func(i *cart.LineItem, _ int) *cart.LineItem {
		c := *i
		return &c
	}), nil
}

func (s *InMemoryCartStore) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	if err := s.fault("MarkCompleted"); err != nil {
		return err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := *c
	updated.CompletedAt = &completedAt
	updated.UpdatedAt = completedAt
	return s.InMemoryStore.Update(ctx, id, &updated)
}

func (s *InMemoryCartStore) SetPaymentIntentID(ctx context.Context, id, paymentIntentID string) error {
	if err := s.fault("SetPaymentIntentID"); err != nil {
		return err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := *c
	updated.PaymentIntentID = lo.ToPtr(paymentIntentID)
	return s.InMemoryStore.Update(ctx, id, &updated)
}

// Clear removes carts and their items
func (s *InMemoryCartStore) Clear() {
	s.InMemoryStore.Clear()
	s.items.Clear()
}
