package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/subscription"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/stripe/stripe-go/v82"
)

type SubscriptionLifecycleService = interfaces.SubscriptionLifecycleService

type subscriptionLifecycleService struct {
	ServiceParams
	now func() time.Time
}

func NewSubscriptionLifecycleService(params ServiceParams) SubscriptionLifecycleService {
	return &subscriptionLifecycleService{
		ServiceParams: params,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// OnInvoicePaymentSucceeded creates the subscription on its first paid
// invoice and refreshes it on every later one.
func (s *subscriptionLifecycleService) OnInvoicePaymentSucceeded(ctx context.Context, invoice *stripe.Invoice) error {
	stripeSubscriptionID := InvoiceSubscriptionID(invoice)
	if stripeSubscriptionID == "" {
		s.Logger.Infow("invoice is not linked to a subscription, skipping",
			"invoice_id", invoiceID(invoice),
		)
		return nil
	}

	existing, err := s.RetrieveByStripeSubscriptionID(ctx, stripeSubscriptionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.refresh(ctx, existing)
	}

	_, err = s.CreateSubscription(ctx, stripeSubscriptionID)
	return err
}

// OnInvoicePaymentFailed refreshes the status of a known subscription.
// Unknown subscriptions are ignored.
func (s *subscriptionLifecycleService) OnInvoicePaymentFailed(ctx context.Context, invoice *stripe.Invoice) error {
	stripeSubscriptionID := InvoiceSubscriptionID(invoice)
	if stripeSubscriptionID == "" {
		return nil
	}

	existing, err := s.RetrieveByStripeSubscriptionID(ctx, stripeSubscriptionID)
	if err != nil {
		return err
	}
	if existing == nil {
		s.Logger.Infow("no subscription for failed invoice, skipping",
			"invoice_id", invoiceID(invoice),
			"stripe_subscription_id", stripeSubscriptionID,
		)
		return nil
	}
	return s.refresh(ctx, existing)
}

func (s *subscriptionLifecycleService) OnSubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error {
	if err := s.SubRepo.DeleteByStripeSubscriptionID(ctx, stripeSubscriptionID); err != nil {
		return err
	}
	s.Logger.Infow("deleted subscription", "stripe_subscription_id", stripeSubscriptionID)
	return nil
}

// EnsureSubscriptionForPaymentIntent makes sure the subscription paid by a
// payment intent exists, creating it when the invoice event has not done so yet.
func (s *subscriptionLifecycleService) EnsureSubscriptionForPaymentIntent(ctx context.Context, stripeSubscriptionID string) error {
	if stripeSubscriptionID == "" {
		return nil
	}

	existing, err := s.RetrieveByStripeSubscriptionID(ctx, stripeSubscriptionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.refresh(ctx, existing)
	}

	_, err = s.CreateSubscription(ctx, stripeSubscriptionID)
	return err
}

func (s *subscriptionLifecycleService) RetrieveByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetByStripeSubscriptionID(ctx, stripeSubscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// CreateSubscription persists the gateway subscription and schedules its first
// laundry order. A subscription that already exists, or is inserted
// concurrently, fails with a conflict.
func (s *subscriptionLifecycleService) CreateSubscription(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	existing, err := s.RetrieveByStripeSubscriptionID(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, subscriptionExistsError(stripeSubscriptionID, nil)
	}

	stripeSub, err := s.Stripe.RetrieveSubscription(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}

	if stripeSub.LatestInvoice != nil && stripeSub.LatestInvoice.ID != "" {
		latestInvoice := stripeSub.LatestInvoice
		if latestInvoice.Status == "" {
			latestInvoice, err = s.Stripe.RetrieveInvoice(ctx, latestInvoice.ID)
			if err != nil {
				return nil, err
			}
		}
		s.Logger.Debugw("latest invoice for new subscription",
			"stripe_subscription_id", stripeSub.ID,
			"invoice_id", latestInvoice.ID,
			"invoice_status", latestInvoice.Status,
		)
	}

	now := s.now()
	update := StatusUpdateFromStripe(stripeSub)
	sub := &subscription.Subscription{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		StripeSubscriptionID: stripeSub.ID,
		ProductID:            stripeSub.Metadata[types.MetadataKeyProductID],
		CustomerID:           stripeSub.Metadata[types.MetadataKeyCustomerID],
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	sub.Apply(update)

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, subscriptionExistsError(stripeSubscriptionID, err)
		}
		return nil, err
	}

	customerService := NewCustomerService(s.ServiceParams)
	shippingAddressID, err := customerService.GetDefaultShippingAddressID(ctx, sub.CustomerID)
	if err != nil {
		return nil, err
	}

	laundryOrderService := NewLaundryOrderService(s.ServiceParams)
	if _, err := laundryOrderService.Schedule(ctx, sub, shippingAddressID, now); err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"stripe_subscription_id", sub.StripeSubscriptionID,
		"status", sub.Status,
	)
	return sub, nil
}

// refresh copies the gateway's current status and period onto the row
func (s *subscriptionLifecycleService) refresh(ctx context.Context, sub *subscription.Subscription) error {
	stripeSub, err := s.Stripe.RetrieveSubscription(ctx, sub.StripeSubscriptionID)
	if err != nil {
		return err
	}

	sub.Apply(StatusUpdateFromStripe(stripeSub))
	sub.UpdatedAt = s.now()

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}

	s.Logger.Infow("updated subscription",
		"subscription_id", sub.ID,
		"stripe_subscription_id", sub.StripeSubscriptionID,
		"status", sub.Status,
	)
	return nil
}

// StatusUpdateFromStripe maps the gateway subscription's status and reads the
// billing period from its first item.
func StatusUpdateFromStripe(stripeSub *stripe.Subscription) subscription.StatusUpdate {
	update := subscription.StatusUpdate{
		Status: types.MapGatewaySubscriptionStatus(string(stripeSub.Status)),
	}
	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 {
		item := stripeSub.Items.Data[0]
		update.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		update.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	return update
}

// InvoiceSubscriptionID returns the gateway subscription an invoice bills, if any
func InvoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice == nil || invoice.Parent == nil || invoice.Parent.SubscriptionDetails == nil {
		return ""
	}
	if invoice.Parent.SubscriptionDetails.Subscription == nil {
		return ""
	}
	return invoice.Parent.SubscriptionDetails.Subscription.ID
}

func invoiceID(invoice *stripe.Invoice) string {
	if invoice == nil {
		return ""
	}
	return invoice.ID
}

func subscriptionExistsError(stripeSubscriptionID string, cause error) error {
	b := ierr.NewErrorf("Subscription with stripe id %s already exists in the database.", stripeSubscriptionID)
	if cause != nil {
		b = ierr.WithError(cause).
			WithMessagef("Subscription with stripe id %s already exists in the database.", stripeSubscriptionID)
	}
	return b.
		WithHint("The subscription is already being created; the event will be retried").
		WithReportableDetails(map[string]any{"stripe_subscription_id": stripeSubscriptionID}).
		Mark(ierr.ErrConflict)
}
