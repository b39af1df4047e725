package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	"github.com/samber/lo"
)

// InMemoryPaymentCollectionStore implements paymentcollection.Repository
type InMemoryPaymentCollectionStore struct {
	Faults
	*InMemoryStore[*paymentcollection.PaymentCollection]
	payments  *InMemoryStore[*paymentcollection.Payment]
	captureMu sync.Mutex
}

func NewInMemoryPaymentCollectionStore() *InMemoryPaymentCollectionStore {
	return &InMemoryPaymentCollectionStore{
		InMemoryStore: NewInMemoryStore[*paymentcollection.PaymentCollection](),
		payments:      NewInMemoryStore[*paymentcollection.Payment](),
	}
}

// AddCollection seeds a collection together with its payments
func (s *InMemoryPaymentCollectionStore) AddCollection(ctx context.Context, c *paymentcollection.PaymentCollection) error {
	stored := *c
	stored.Payments = nil
	if err := s.InMemoryStore.Create(ctx, c.ID, &stored); err != nil {
		return err
	}
	for _, p := range c.Payments {
		payment := *p
		payment.PaymentCollectionID = c.ID
		if err := s.payments.Create(ctx, p.ID, &payment); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryPaymentCollectionStore) Get(ctx context.Context, id string) (*paymentcollection.PaymentCollection, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

func (s *InMemoryPaymentCollectionStore) ListPayments(ctx context.Context, collectionID string) ([]*paymentcollection.Payment, error) {
	if err := s.fault("ListPayments"); err != nil {
		return nil, err
	}
	payments := s.payments.List(ctx, func(_ context.Context, p *paymentcollection.Payment) bool {
		return p.PaymentCollectionID == collectionID
	}, func(a, b *paymentcollection.Payment) bool {
		return a.ID < b.ID
	})
	return lo.Map(payments, func(p *paymentcollection.Payment, _ int) *paymentcollection.Payment {
		c := *p
		return &c
	}), nil
}

func (s *InMemoryPaymentCollectionStore) GetPayment(ctx context.Context, paymentID string) (*paymentcollection.Payment, error) {
	if err := s.fault("GetPayment"); err != nil {
		return nil, err
	}
	p, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (s *InMemoryPaymentCollectionStore) MarkPaymentCaptured(ctx context.Context, paymentID string, capturedAt time.Time) (bool, error) {
	if err := s.fault("MarkPaymentCaptured"); err != nil {
		return false, err
	}

	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	p, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return false, err
	}
	if p.CapturedAt != nil {
		return false, nil
	}
	updated := *p
	updated.CapturedAt = &capturedAt
	return true, s.payments.Update(ctx, paymentID, &updated)
}

// Clear removes collections and their payments
func (s *InMemoryPaymentCollectionStore) Clear() {
	s.InMemoryStore.Clear()
	s.payments.Clear()
}
