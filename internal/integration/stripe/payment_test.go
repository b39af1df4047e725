package stripe

import (
	"context"
	"testing"

	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/domain/cart"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

// storeCartService serves carts straight from the in-memory store
type storeCartService struct {
	store *testutil.InMemoryCartStore
}

func (s *storeCartService) Retrieve(ctx context.Context, id string, withItems bool) (*cart.Cart, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if withItems {
		c.Items, err = s.store.ListItems(ctx, id)
	}
	return c, err
}

func newTestProcessor(t *testing.T) (*PaymentProcessor, *testutil.InMemoryCartStore) {
	cfg := config.GetDefaultConfig()
	cfg.Stripe = config.StripeConfig{
		SecretKey:                 "sk_test_reconciler",
		WebhookSecret:             testutil.TestWebhookSecret,
		SubscriptionProductTypeID: "ptyp_subscription",
	}
	log := logger.NewNoopLogger()
	carts := testutil.NewInMemoryCartStore()

	p := NewPaymentProcessor(NewClient(cfg, log), &storeCartService{store: carts}, nil, carts, cfg, log)
	return p, carts
}

func TestInitiatePaymentValidation(t *testing.T) {
	ctx := testutil.SetupContext()
	p, carts := newTestProcessor(t)

	subscriptionItem := func(id string) *cart.LineItem {
		return &cart.LineItem{ID: id, ProductTypeID: "ptyp_subscription", PriceID: "price_1", Quantity: 1}
	}
	require.NoError(t, carts.AddCart(ctx, &cart.Cart{
		ID:         "cart_two_subs",
		CustomerID: "cus_1",
		Items:      []*cart.LineItem{subscriptionItem("item_1"), subscriptionItem("item_2")},
	}))
	require.NoError(t, carts.AddCart(ctx, &cart.Cart{
		ID:         "cart_no_subs",
		CustomerID: "cus_1",
		Items:      []*cart.LineItem{{ID: "item_3", ProductTypeID: "ptyp_addon", Quantity: 1}},
	}))

	tests := []struct {
		name    string
		cartID  string
		check   func(error) bool
		message string
	}{
		{"cart id without prefix", "order_1", ierr.IsValidation, ""},
		{"unknown cart", "cart_missing", ierr.IsNotFound, "cart not found"},
		{"more than one subscription item", "cart_two_subs", ierr.IsValidation, "Only one subscription item is allowed"},
		{"no subscription item", "cart_no_subs", ierr.IsValidation, "cart has no subscription item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.InitiatePayment(ctx, &InitiatePaymentRequest{CartID: tt.cartID})
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, tt.check(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestMapPaymentIntentStatus(t *testing.T) {
	tests := []struct {
		status stripe.PaymentIntentStatus
		want   types.PaymentSessionStatus
	}{
		{stripe.PaymentIntentStatusRequiresPaymentMethod, types.PaymentSessionStatusPending},
		{stripe.PaymentIntentStatusRequiresConfirmation, types.PaymentSessionStatusPending},
		{stripe.PaymentIntentStatusProcessing, types.PaymentSessionStatusPending},
		{stripe.PaymentIntentStatusRequiresAction, types.PaymentSessionStatusRequiresMore},
		{stripe.PaymentIntentStatusCanceled, types.PaymentSessionStatusCanceled},
		{stripe.PaymentIntentStatusRequiresCapture, types.PaymentSessionStatusAuthorized},
		{stripe.PaymentIntentStatusSucceeded, types.PaymentSessionStatusAuthorized},
		{stripe.PaymentIntentStatus("unknown"), types.PaymentSessionStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, MapPaymentIntentStatus(tt.status))
		})
	}
}

func TestLatestPaymentIntentID(t *testing.T) {
	assert.Empty(t, LatestPaymentIntentID(nil))
	assert.Empty(t, LatestPaymentIntentID(&stripe.Subscription{ID: "sub_1"}))
	assert.Empty(t, LatestPaymentIntentID(&stripe.Subscription{
		LatestInvoice: &stripe.Invoice{ID: "in_1"},
	}))

	sub := &stripe.Subscription{
		LatestInvoice: &stripe.Invoice{
			ID: "in_1",
			Payments: &stripe.InvoicePaymentList{
				Data: []*stripe.InvoicePayment{
					{Payment: &stripe.InvoicePaymentPayment{}},
					{Payment: &stripe.InvoicePaymentPayment{PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"}}},
				},
			},
		},
	}
	assert.Equal(t, "pi_1", LatestPaymentIntentID(sub))
}
