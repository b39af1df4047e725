package stripe

import (
	"context"
	"errors"

	"github.com/laundrybox/reconciler/internal/config"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client handles Stripe API client setup and the calls the reconciler makes
type Client struct {
	api    *stripe.Client
	config config.StripeConfig
	logger *logger.Logger
}

var _ interfaces.StripeGateway = (*Client)(nil)

// NewClient creates a new Stripe client from configuration
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	var opts []stripe.ClientOption
	if cfg.Stripe.APIBaseURL != "" {
		opts = append(opts, stripe.WithBackends(stripe.NewBackendsWithConfig(&stripe.BackendConfig{
			URL:               stripe.String(cfg.Stripe.APIBaseURL),
			MaxNetworkRetries: stripe.Int64(0),
		})))
	}

	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, opts...),
		config: cfg.Stripe,
		logger: logger,
	}
}

// API exposes the underlying stripe client
func (c *Client) API() *stripe.Client {
	return c.api
}

// ConstructEvent verifies a webhook signature and parses the event,
// ignoring API version mismatch
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.config.WebhookSecret, options)
	if err != nil {
		c.logger.Errorw("Stripe webhook verification failed", "error", err)
		return stripe.Event{}, ierr.WithError(err).
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return event, nil
}

// RetrieveSubscription fetches a subscription with its latest invoice expanded
func (c *Client) RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionRetrieveParams{
		Expand: []*string{
			stripe.String("latest_invoice"),
		},
	}

	sub, err := c.api.V1Subscriptions.Retrieve(ctx, id, params)
	if err != nil {
		c.logger.Errorw("failed to retrieve subscription from Stripe",
			"error", err,
			"stripe_subscription_id", id,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not fetch subscription information from Stripe").
			WithReportableDetails(map[string]interface{}{
				"stripe_subscription_id": id,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return sub, nil
}

// RetrieveInvoice fetches an invoice
func (c *Client) RetrieveInvoice(ctx context.Context, id string) (*stripe.Invoice, error) {
	inv, err := c.api.V1Invoices.Retrieve(ctx, id, nil)
	if err != nil {
		c.logger.Errorw("failed to retrieve invoice from Stripe",
			"error", err,
			"stripe_invoice_id", id,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not fetch invoice information from Stripe").
			WithReportableDetails(map[string]interface{}{
				"stripe_invoice_id": id,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return inv, nil
}

// CapturePaymentIntent captures an authorised payment intent. An intent that
// already succeeded is returned as is.
func (c *Client) CapturePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	intent, err := c.api.V1PaymentIntents.Capture(ctx, id, &stripe.PaymentIntentCaptureParams{})
	if err == nil {
		return intent, nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
		if stripeErr.PaymentIntent != nil && stripeErr.PaymentIntent.Status == stripe.PaymentIntentStatusSucceeded {
			return stripeErr.PaymentIntent, nil
		}
	}

	c.logger.Errorw("failed to capture payment intent",
		"error", err,
		"payment_intent_id", id,
	)
	return nil, ierr.WithError(err).
		WithHint("Unable to capture Stripe payment intent").
		WithReportableDetails(map[string]interface{}{
			"payment_intent_id": id,
		}).
		Mark(ierr.ErrHTTPClient)
}
