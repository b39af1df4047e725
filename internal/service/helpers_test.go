package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// newTestServiceParams wires the suite's in-memory stores into ServiceParams
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		s.GetCache(),
		s.GetGateway(),
		stores.IdempotencyKeyRepo,
		stores.CartRepo,
		stores.OrderRepo,
		stores.PaymentCollectionRepo,
		stores.SubscriptionRepo,
		stores.LaundryOrderRepo,
		stores.CustomerRepo,
	)
}

func seedCart(ctx context.Context, s *testutil.BaseServiceTestSuite, id string, paymentIntentID string, items int) *cart.Cart {
	c := &cart.Cart{
		ID:           id,
		CustomerID:   "cus_1",
		Email:        "jane@example.com",
		CurrencyCode: "eur",
		Context:      map[string]interface{}{cart.ContextKeyIP: "10.0.0.1"},
		CreatedAt:    s.GetNow(),
		UpdatedAt:    s.GetNow(),
	}
	if paymentIntentID != "" {
		c.PaymentIntentID = lo.ToPtr(paymentIntentID)
	}
	for i := 0; i < items; i++ {
		c.Items = append(c.Items, &cart.LineItem{
			ID:        s.GetUUID(),
			VariantID: "variant_1",
			ProductID: "prod_1",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(25),
		})
	}
	s.Require().NoError(s.GetStores().CartRepo.AddCart(ctx, c))
	return c
}

func stripeSubscription(id string, status stripe.SubscriptionStatus, periodStart time.Time) *stripe.Subscription {
	return &stripe.Subscription{
		ID:     id,
		Status: status,
		Metadata: map[string]string{
			"customer_id": "cus_1",
			"product_id":  "prod_1",
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					CurrentPeriodStart: periodStart.Unix(),
					CurrentPeriodEnd:   periodStart.AddDate(0, 1, 0).Unix(),
				},
			},
		},
		LatestInvoice: &stripe.Invoice{
			ID:     "in_" + id,
			Status: stripe.InvoiceStatusPaid,
		},
	}
}

func subscriptionInvoice(id, stripeSubscriptionID string) *stripe.Invoice {
	return &stripe.Invoice{
		ID: id,
		Parent: &stripe.InvoiceParent{
			SubscriptionDetails: &stripe.InvoiceParentSubscriptionDetails{
				Subscription: &stripe.Subscription{ID: stripeSubscriptionID},
			},
		},
	}
}

var assertAnError = ierr.NewError("store unavailable").Mark(ierr.ErrDatabase)
