package interfaces

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway is the subset of the Stripe API the reconciler depends on
type StripeGateway interface {
	// ConstructEvent verifies the signature header and parses the payload
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
	RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	RetrieveInvoice(ctx context.Context, id string) (*stripe.Invoice, error)
	CapturePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}
