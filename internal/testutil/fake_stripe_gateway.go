package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// TestWebhookSecret signs payloads produced by SignedEvent
const TestWebhookSecret = "whsec_test_reconciler"

var _ interfaces.StripeGateway = (*FakeStripeGateway)(nil)

// FakeStripeGateway serves subscriptions and invoices from memory and
// verifies webhook signatures against TestWebhookSecret
type FakeStripeGateway struct {
	mu            sync.Mutex
	subscriptions map[string]*stripe.Subscription
	invoices      map[string]*stripe.Invoice
	captures      map[string]int
	// CaptureErr, when set, is returned by CapturePaymentIntent
	CaptureErr error
}

func NewFakeStripeGateway() *FakeStripeGateway {
	return &FakeStripeGateway{
		subscriptions: make(map[string]*stripe.Subscription),
		invoices:      make(map[string]*stripe.Invoice),
		captures:      make(map[string]int),
	}
}

// AddSubscription makes sub retrievable by id
func (g *FakeStripeGateway) AddSubscription(sub *stripe.Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscriptions[sub.ID] = sub
}

// AddInvoice makes inv retrievable by id
func (g *FakeStripeGateway) AddInvoice(inv *stripe.Invoice) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invoices[inv.ID] = inv
}

// CaptureCount returns how many times the intent was captured
func (g *FakeStripeGateway) CaptureCount(paymentIntentID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captures[paymentIntentID]
}

func (g *FakeStripeGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, TestWebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, ierr.WithError(err).
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return event, nil
}

func (g *FakeStripeGateway) RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[id]
	if !ok {
		return nil, ierr.NewErrorf("no such subscription: %s", id).
			Mark(ierr.ErrHTTPClient)
	}
	return sub, nil
}

func (g *FakeStripeGateway) RetrieveInvoice(ctx context.Context, id string) (*stripe.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invoices[id]
	if !ok {
		return nil, ierr.NewErrorf("no such invoice: %s", id).
			Mark(ierr.ErrHTTPClient)
	}
	return inv, nil
}

func (g *FakeStripeGateway) CapturePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CaptureErr != nil {
		return nil, g.CaptureErr
	}
	g.captures[id]++
	return &stripe.PaymentIntent{
		ID:     id,
		Status: stripe.PaymentIntentStatusSucceeded,
	}, nil
}

// SignedEvent builds an event envelope around object and signs it with
// TestWebhookSecret. It returns the payload and the Stripe-Signature header.
func SignedEvent(eventID string, eventType stripe.EventType, object interface{}) ([]byte, string, error) {
	raw, err := json.Marshal(object)
	if err != nil {
		return nil, "", err
	}
	payload, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data": map[string]json.RawMessage{
			"object": raw,
		},
	})
	if err != nil {
		return nil, "", err
	}
	return SignPayload(payload)
}

// SignPayload signs an arbitrary body with TestWebhookSecret
func SignPayload(payload []byte) ([]byte, string, error) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    TestWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header, nil
}
