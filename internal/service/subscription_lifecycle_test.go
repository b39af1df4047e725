package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/domain/subscription"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type SubscriptionLifecycleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     SubscriptionLifecycleService
	now         time.Time
	periodStart time.Time
}

func TestSubscriptionLifecycleService(t *testing.T) {
	suite.Run(t, new(SubscriptionLifecycleServiceSuite))
}

func (s *SubscriptionLifecycleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	// Tuesday
	s.now = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)
	s.periodStart = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	svc := NewSubscriptionLifecycleService(newTestServiceParams(&s.BaseServiceTestSuite))
	svc.(*subscriptionLifecycleService).now = func() time.Time { return s.now }
	s.service = svc

	s.Require().NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), &customer.Customer{
		ID:    "cus_1",
		Email: "jane@example.com",
		Metadata: types.Metadata{
			types.MetadataKeyDefaultShippingAddressID: "addr_1",
		},
	}))
}

func (s *SubscriptionLifecycleServiceSuite) TestFirstPaidInvoiceCreatesSubscription() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))

	s.Require().NoError(s.service.OnInvoicePaymentSucceeded(ctx, subscriptionInvoice("in_1", "sub_1")))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeSubscriptionID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal("cus_1", sub.CustomerID)
	s.Equal("prod_1", sub.ProductID)
	s.True(sub.CurrentPeriodStart.Equal(s.periodStart))
	s.True(sub.CurrentPeriodEnd.Equal(s.periodStart.AddDate(0, 1, 0)))

	orders := s.GetStores().LaundryOrderRepo.ListBySubscriptionID(ctx, sub.ID)
	s.Require().Len(orders, 1)
	s.Equal(types.LaundryOrderStatusPending, orders[0].Status)
	s.Equal("addr_1", lo.FromPtr(orders[0].ShippingAddressID))
	s.True(orders[0].PlacedAt.Equal(types.NextValidDate(s.now, nil)))
}

func (s *SubscriptionLifecycleServiceSuite) TestLaterInvoiceRefreshesSubscription() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))
	s.Require().NoError(s.service.OnInvoicePaymentSucceeded(ctx, subscriptionInvoice("in_1", "sub_1")))

	nextPeriod := s.periodStart.AddDate(0, 1, 0)
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, nextPeriod))
	s.Require().NoError(s.service.OnInvoicePaymentSucceeded(ctx, subscriptionInvoice("in_2", "sub_1")))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeSubscriptionID(ctx, "sub_1")
	s.Require().NoError(err)
	s.True(sub.CurrentPeriodStart.Equal(nextPeriod))
	s.Equal(1, s.GetStores().SubscriptionRepo.Count(ctx, nil))
	s.Len(s.GetStores().LaundryOrderRepo.ListBySubscriptionID(ctx, sub.ID), 1)
}

func (s *SubscriptionLifecycleServiceSuite) TestStatusMappingOnRefresh() {
	tests := []struct {
		name   string
		status stripe.SubscriptionStatus
		want   types.SubscriptionStatus
	}{
		{"past due halts", stripe.SubscriptionStatusPastDue, types.SubscriptionStatusHalted},
		{"unpaid halts", stripe.SubscriptionStatusUnpaid, types.SubscriptionStatusHalted},
		{"trialing is active", stripe.SubscriptionStatusTrialing, types.SubscriptionStatusActive},
		{"incomplete expired is incomplete", stripe.SubscriptionStatusIncompleteExpired, types.SubscriptionStatusIncomplete},
		{"canceled passes through", stripe.SubscriptionStatusCanceled, types.SubscriptionStatusCanceled},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			ctx := s.GetContext()
			s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))
			s.Require().NoError(s.service.OnInvoicePaymentSucceeded(ctx, subscriptionInvoice("in_1", "sub_1")))

			s.GetGateway().AddSubscription(stripeSubscription("sub_1", tt.status, s.periodStart))
			s.Require().NoError(s.service.OnInvoicePaymentFailed(ctx, subscriptionInvoice("in_2", "sub_1")))

			sub, err := s.GetStores().SubscriptionRepo.GetByStripeSubscriptionID(ctx, "sub_1")
			s.Require().NoError(err)
			s.Equal(tt.want, sub.Status)
		})
	}
}

func (s *SubscriptionLifecycleServiceSuite) TestInvoiceWithoutSubscriptionIsIgnored() {
	ctx := s.GetContext()
	s.Require().NoError(s.service.OnInvoicePaymentSucceeded(ctx, &stripe.Invoice{ID: "in_1"}))
	s.Require().NoError(s.service.OnInvoicePaymentFailed(ctx, &stripe.Invoice{ID: "in_1"}))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count(ctx, nil))
}

func (s *SubscriptionLifecycleServiceSuite) TestFailedInvoiceForUnknownSubscriptionIsIgnored() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusPastDue, s.periodStart))

	s.Require().NoError(s.service.OnInvoicePaymentFailed(ctx, subscriptionInvoice("in_1", "sub_1")))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count(ctx, nil))
}

func (s *SubscriptionLifecycleServiceSuite) TestSubscriptionDeleted() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))
	_, err := s.service.CreateSubscription(ctx, "sub_1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.OnSubscriptionDeleted(ctx, "sub_1"))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count(ctx, nil))

	// deleting an unknown subscription is not an error
	s.Require().NoError(s.service.OnSubscriptionDeleted(ctx, "sub_1"))
}

func (s *SubscriptionLifecycleServiceSuite) TestCreateExistingSubscriptionConflicts() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))
	_, err := s.service.CreateSubscription(ctx, "sub_1")
	s.Require().NoError(err)

	_, err = s.service.CreateSubscription(ctx, "sub_1")
	s.Require().Error(err)
	s.True(ierr.IsConflict(err))
	s.Contains(err.Error(), "Subscription with stripe id sub_1 already exists in the database.")
}

func (s *SubscriptionLifecycleServiceSuite) TestInsertRaceConflicts() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))

	// another worker inserts the row after our lookup and before our insert
	store := s.GetStores().SubscriptionRepo
	var once sync.Once
	store.BeforeCreate = func(ctx context.Context, sub *subscription.Subscription) {
		once.Do(func() {
			rival := *sub
			rival.ID = "sub_rival"
			s.Require().NoError(store.InMemoryStore.Create(ctx, sub.StripeSubscriptionID, &rival))
		})
	}

	_, err := s.service.CreateSubscription(ctx, "sub_1")
	s.Require().Error(err)
	s.True(ierr.IsConflict(err))
	s.Contains(err.Error(), "Subscription with stripe id sub_1 already exists in the database.")

	stored, err := store.GetByStripeSubscriptionID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal("sub_rival", stored.ID)
	s.Equal(0, s.GetStores().LaundryOrderRepo.Count(ctx, nil))
}

func (s *SubscriptionLifecycleServiceSuite) TestConcurrentCreationYieldsOneRow() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CreateSubscription(ctx, "sub_1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case ierr.IsConflict(err):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}

	s.Equal(1, succeeded)
	s.Equal(workers-1, conflicts)
	s.Equal(1, s.GetStores().SubscriptionRepo.Count(ctx, nil))
	s.Equal(1, s.GetStores().LaundryOrderRepo.Count(ctx, nil))
}

func (s *SubscriptionLifecycleServiceSuite) TestEnsureSubscriptionForPaymentIntent() {
	ctx := s.GetContext()
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusIncomplete, s.periodStart))

	s.Require().NoError(s.service.EnsureSubscriptionForPaymentIntent(ctx, ""))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count(ctx, nil))

	s.Require().NoError(s.service.EnsureSubscriptionForPaymentIntent(ctx, "sub_1"))
	sub, err := s.GetStores().SubscriptionRepo.GetByStripeSubscriptionID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusIncomplete, sub.Status)

	// the invoice event may arrive first; the payment intent event then refreshes
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))
	s.Require().NoError(s.service.EnsureSubscriptionForPaymentIntent(ctx, "sub_1"))
	sub, err = s.GetStores().SubscriptionRepo.GetByStripeSubscriptionID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal(1, s.GetStores().LaundryOrderRepo.Count(ctx, nil))
}

func (s *SubscriptionLifecycleServiceSuite) TestUnexpandedLatestInvoiceIsFetched() {
	ctx := s.GetContext()
	stripeSub := stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart)
	stripeSub.LatestInvoice = &stripe.Invoice{ID: "in_latest"}
	s.GetGateway().AddSubscription(stripeSub)

	_, err := s.service.CreateSubscription(ctx, "sub_1")
	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count(ctx, nil))

	s.GetGateway().AddInvoice(&stripe.Invoice{ID: "in_latest", Status: stripe.InvoiceStatusPaid})
	_, err = s.service.CreateSubscription(ctx, "sub_1")
	s.Require().NoError(err)
}

func (s *SubscriptionLifecycleServiceSuite) TestCustomerWithoutShippingAddress() {
	ctx := s.GetContext()
	s.Require().NoError(s.GetStores().CustomerRepo.UpdateMetadata(ctx, "cus_1", types.Metadata{}))
	s.GetGateway().AddSubscription(stripeSubscription("sub_1", stripe.SubscriptionStatusActive, s.periodStart))

	sub, err := s.service.CreateSubscription(ctx, "sub_1")
	s.Require().NoError(err)

	orders := s.GetStores().LaundryOrderRepo.ListBySubscriptionID(ctx, sub.ID)
	s.Require().Len(orders, 1)
	s.Nil(orders[0].ShippingAddressID)
}
