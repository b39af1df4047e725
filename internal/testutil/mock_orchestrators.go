package testutil

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/subscription"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

var (
	_ interfaces.CompletionService            = (*MockCompletionService)(nil)
	_ interfaces.CaptureService               = (*MockCaptureService)(nil)
	_ interfaces.SubscriptionLifecycleService = (*MockSubscriptionLifecycleService)(nil)
)

type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) CompleteCartIfNecessary(ctx context.Context, eventID, cartID string) error {
	args := m.Called(ctx, eventID, cartID)
	return args.Error(0)
}

type MockCaptureService struct {
	mock.Mock
}

func (m *MockCaptureService) CapturePaymentIfNecessary(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func (m *MockCaptureService) CapturePaymentCollectionIfNecessary(ctx context.Context, resourceID, paymentIntentID string) error {
	args := m.Called(ctx, resourceID, paymentIntentID)
	return args.Error(0)
}

type MockSubscriptionLifecycleService struct {
	mock.Mock
}

func (m *MockSubscriptionLifecycleService) OnInvoicePaymentSucceeded(ctx context.Context, invoice *stripe.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockSubscriptionLifecycleService) OnInvoicePaymentFailed(ctx context.Context, invoice *stripe.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockSubscriptionLifecycleService) OnSubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionLifecycleService) EnsureSubscriptionForPaymentIntent(ctx context.Context, stripeSubscriptionID string) error {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionLifecycleService) CreateSubscription(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubscriptionLifecycleService) RetrieveByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}
