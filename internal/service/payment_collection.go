package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
)

type PaymentCollectionService = interfaces.PaymentCollectionService

type paymentCollectionService struct {
	ServiceParams
}

func NewPaymentCollectionService(params ServiceParams) PaymentCollectionService {
	return &paymentCollectionService{
		ServiceParams: params,
	}
}

// Retrieve returns the collection, optionally with its payments, or nil if it does not exist
func (s *paymentCollectionService) Retrieve(ctx context.Context, id string, withPayments bool) (*paymentcollection.PaymentCollection, error) {
	c, err := s.PaymentCollectionRepo.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if withPayments {
		payments, err := s.PaymentCollectionRepo.ListPayments(ctx, id)
		if err != nil {
			return nil, err
		}
		c.Payments = payments
	}
	return c, nil
}

// Capture captures a single payment at the gateway. captured_at is only ever
// set once; a payment captured concurrently is returned unchanged.
func (s *paymentCollectionService) Capture(ctx context.Context, paymentID string) (*paymentcollection.Payment, error) {
	p, err := s.PaymentCollectionRepo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.IsCaptured() {
		return p, nil
	}

	if _, err := s.Stripe.CapturePaymentIntent(ctx, p.GatewayPaymentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := s.PaymentCollectionRepo.MarkPaymentCaptured(ctx, p.ID, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.Logger.Warnw("payment was captured concurrently",
			"payment_id", p.ID,
			"payment_collection_id", p.PaymentCollectionID,
		)
		return s.PaymentCollectionRepo.GetPayment(ctx, p.ID)
	}

	p.CapturedAt = &now
	s.Logger.Infow("captured payment collection payment",
		"payment_id", p.ID,
		"payment_collection_id", p.PaymentCollectionID,
		"payment_intent_id", p.GatewayPaymentID,
	)
	return p, nil
}
