package service

import (
	"context"

	"github.com/laundrybox/reconciler/internal/interfaces"
)

type CaptureService = interfaces.CaptureService

type captureService struct {
	ServiceParams
}

func NewCaptureService(params ServiceParams) CaptureService {
	return &captureService{
		ServiceParams: params,
	}
}

// CapturePaymentIfNecessary captures the payment of the order created from
// the cart unless it is already captured. No order means nothing to do.
func (s *captureService) CapturePaymentIfNecessary(ctx context.Context, cartID string) error {
	orderService := NewOrderService(s.ServiceParams)

	o, err := orderService.RetrieveByCartID(ctx, cartID)
	if err != nil {
		return err
	}
	if o == nil {
		s.Logger.Debugw("no order for cart, nothing to capture", "cart_id", cartID)
		return nil
	}
	if o.IsCaptured() {
		return nil
	}

	_, err = orderService.CapturePayment(ctx, o.ID)
	return err
}

// CapturePaymentCollectionIfNecessary captures the collection payment matching
// the payment intent in a nested transaction. A missing collection or payment
// is not an error.
func (s *captureService) CapturePaymentCollectionIfNecessary(ctx context.Context, resourceID, paymentIntentID string) error {
	paymentCollectionService := NewPaymentCollectionService(s.ServiceParams)

	collection, err := paymentCollectionService.Retrieve(ctx, resourceID, true)
	if err != nil {
		return err
	}
	if collection == nil || len(collection.Payments) == 0 {
		s.Logger.Debugw("payment collection not found or empty, nothing to capture",
			"payment_collection_id", resourceID,
			"payment_intent_id", paymentIntentID,
		)
		return nil
	}

	payment := collection.FindPaymentByGatewayID(paymentIntentID)
	if payment == nil || payment.IsCaptured() {
		return nil
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		_, err := paymentCollectionService.Capture(ctx, payment.ID)
		return err
	})
}
