package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/domain/order"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type OrderService = interfaces.OrderService

type orderService struct {
	ServiceParams
}

func NewOrderService(params ServiceParams) OrderService {
	return &orderService{
		ServiceParams: params,
	}
}

// RetrieveByCartID returns the order created from the cart, or nil if there is none
func (s *orderService) RetrieveByCartID(ctx context.Context, cartID string) (*order.Order, error) {
	o, err := s.OrderRepo.GetByCartID(ctx, cartID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// CreateFromCart creates the single order for a cart. A second order for the
// same cart fails with an error marked ErrAlreadyExists.
func (s *orderService) CreateFromCart(ctx context.Context, c *cart.Cart) (*order.Order, error) {
	if c == nil {
		return nil, ierr.NewError("cart is required").
			WithHint("An order can only be created from an existing cart").
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	o := &order.Order{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		CartID:          c.ID,
		CustomerID:      c.CustomerID,
		PaymentStatus:   types.OrderPaymentStatusAwaiting,
		PaymentIntentID: c.PaymentIntentID,
		Total:           c.Total(),
		CurrencyCode:    c.CurrencyCode,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.OrderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("created order from cart",
		"order_id", o.ID,
		"cart_id", c.ID,
		"total", o.Total.String(),
	)
	return o, nil
}

// CapturePayment captures the order's payment intent at the gateway and
// marks the order captured
func (s *orderService) CapturePayment(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.IsCaptured() {
		return o, nil
	}

	if o.PaymentIntentID == nil || *o.PaymentIntentID == "" {
		return nil, ierr.NewError("order has no payment to capture").
			WithHint("The order is not linked to a payment intent").
			WithReportableDetails(map[string]any{"order_id": orderID}).
			Mark(ierr.ErrInvalidOperation)
	}

	if _, err := s.Stripe.CapturePaymentIntent(ctx, *o.PaymentIntentID); err != nil {
		return nil, err
	}

	if err := s.OrderRepo.UpdatePaymentStatus(ctx, o.ID, types.OrderPaymentStatusCaptured); err != nil {
		return nil, err
	}
	o.PaymentStatus = types.OrderPaymentStatusCaptured

	s.Logger.Infow("captured order payment",
		"order_id", o.ID,
		"payment_intent_id", *o.PaymentIntentID,
	)
	return o, nil
}
