package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
	"github.com/laundrybox/reconciler/internal/sentry"
	"github.com/laundrybox/reconciler/internal/types"
	stripeapi "github.com/stripe/stripe-go/v82"
)

// ServiceDependencies contains the orchestrators webhook events are routed to
type ServiceDependencies struct {
	CompletionService            interfaces.CompletionService
	CaptureService               interfaces.CaptureService
	SubscriptionLifecycleService interfaces.SubscriptionLifecycleService
}

// Handler verifies Stripe webhook deliveries and reconciles them with local state
type Handler struct {
	gateway  interfaces.StripeGateway
	db       postgres.IClient
	services *ServiceDependencies
	sentry   *sentry.Service
	logger   *logger.Logger
}

// NewHandler creates a new Stripe webhook handler
func NewHandler(
	gateway interfaces.StripeGateway,
	db postgres.IClient,
	services *ServiceDependencies,
	sentry *sentry.Service,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		gateway:  gateway,
		db:       db,
		services: services,
		sentry:   sentry,
		logger:   logger,
	}
}

// payload is the decoded data object of a recognised event. Exactly one
// field is set, matching the event type.
type payload struct {
	paymentIntent *stripeapi.PaymentIntent
	invoice       *stripeapi.Invoice
	subscription  *stripeapi.Subscription
}

// Handle processes one raw webhook delivery and returns the status code to
// answer Stripe with:
//
//	400 signature or payload could not be verified
//	204 event type is not handled
//	200 event processed
//	409 processing failed, Stripe should redeliver
func (h *Handler) Handle(ctx context.Context, body []byte, signature string) int {
	event, err := h.gateway.ConstructEvent(body, signature)
	if err != nil {
		return http.StatusBadRequest
	}

	ctx = types.SetEventID(ctx, event.ID)
	eventType := types.StripeEventType(event.Type)

	if !eventType.IsRecognized() {
		h.logger.Infow("unhandled Stripe webhook event type",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return http.StatusNoContent
	}

	if eventType == types.StripeEventPaymentIntentPaymentFailed {
		h.handlePaymentIntentPaymentFailed(&event)
		return http.StatusOK
	}

	data, err := decode(eventType, &event)
	if err != nil {
		h.logger.Errorw("failed to decode Stripe webhook payload",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		return http.StatusBadRequest
	}

	h.logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
	)

	if h.sentry != nil {
		span, spanCtx := h.sentry.StartTransaction(ctx, "stripe.webhook "+string(event.Type))
		if span != nil {
			ctx = spanCtx
			defer span.Finish()
		}
		h.sentry.AddBreadcrumb("stripe.webhook", "dispatching event", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
	}

	err = h.db.WithTx(ctx, func(ctx context.Context) error {
		return h.dispatch(ctx, eventType, event.ID, data)
	})
	if err != nil {
		h.logger.Warnw(BuildWebhookErrorMessage(string(eventType), err),
			"event_id", event.ID,
			"event_type", event.Type,
		)
		if !ierr.IsConflict(err) && !ierr.IsSerializationFailure(err) && h.sentry != nil {
			h.sentry.CaptureWebhookFailure(ctx, event.ID, string(eventType), err)
		}
		return http.StatusConflict
	}

	return http.StatusOK
}

// dispatch routes a recognised event inside the transaction opened by Handle
func (h *Handler) dispatch(ctx context.Context, eventType types.StripeEventType, eventID string, data *payload) error {
	switch eventType {
	case types.StripeEventInvoicePaymentSucceeded:
		return h.services.SubscriptionLifecycleService.OnInvoicePaymentSucceeded(ctx, data.invoice)
	case types.StripeEventInvoicePaymentFailed:
		return h.services.SubscriptionLifecycleService.OnInvoicePaymentFailed(ctx, data.invoice)
	case types.StripeEventPaymentIntentSucceeded:
		return h.handlePaymentIntentSucceeded(ctx, eventID, data.paymentIntent)
	case types.StripeEventPaymentIntentAmountCapturableUpd:
		return h.handlePaymentIntentAmountCapturableUpdated(ctx, eventID, data.paymentIntent)
	case types.StripeEventCustomerSubscriptionDeleted:
		return h.services.SubscriptionLifecycleService.OnSubscriptionDeleted(ctx, data.subscription.ID)
	default:
		h.logger.Warnw("no route for Stripe webhook event type",
			"event_id", eventID,
			"event_type", eventType,
		)
		return nil
	}
}

// handlePaymentIntentSucceeded completes and captures the cart, or captures the
// payment collection, then makes sure any subscription it paid for exists
func (h *Handler) handlePaymentIntentSucceeded(ctx context.Context, eventID string, intent *stripeapi.PaymentIntent) error {
	cartID, resourceID := resourceIDs(intent)

	switch {
	case types.IsPaymentCollection(resourceID):
		if err := h.services.CaptureService.CapturePaymentCollectionIfNecessary(ctx, resourceID, intent.ID); err != nil {
			return err
		}
	case cartID != "":
		if err := h.services.CompletionService.CompleteCartIfNecessary(ctx, eventID, cartID); err != nil {
			return err
		}
		if err := h.services.CaptureService.CapturePaymentIfNecessary(ctx, cartID); err != nil {
			return err
		}
	default:
		h.logger.Infow("payment intent carries no cart or resource id",
			"event_id", eventID,
			"payment_intent_id", intent.ID,
		)
	}

	if subscriptionID := intent.Metadata[types.MetadataKeySubscriptionID]; subscriptionID != "" {
		return h.services.SubscriptionLifecycleService.EnsureSubscriptionForPaymentIntent(ctx, subscriptionID)
	}
	return nil
}

// handlePaymentIntentAmountCapturableUpdated only completes the cart; capture
// happens on payment_intent.succeeded
func (h *Handler) handlePaymentIntentAmountCapturableUpdated(ctx context.Context, eventID string, intent *stripeapi.PaymentIntent) error {
	cartID, resourceID := resourceIDs(intent)
	if cartID == "" || types.IsPaymentCollection(resourceID) {
		return nil
	}
	return h.services.CompletionService.CompleteCartIfNecessary(ctx, eventID, cartID)
}

// failedPaymentIntent holds the only fields read from a failed payment intent.
// The rest of the object is not decoded, so this event always completes.
type failedPaymentIntent struct {
	ID               string `json:"id"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// handlePaymentIntentPaymentFailed logs the failure reason. It never fails.
func (h *Handler) handlePaymentIntentPaymentFailed(event *stripeapi.Event) {
	var intent failedPaymentIntent
	if event.Data != nil {
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.logger.Warnw("failed to read failed payment intent",
				"event_id", event.ID,
				"error", err,
			)
		}
	}

	var reason string
	if intent.LastPaymentError != nil {
		reason = intent.LastPaymentError.Message
	}
	h.logger.Errorf("The payment of the payment intent %s has failed\n%s", intent.ID, reason)
}

// resourceIDs reads the cart id (falling back to resource_id for older
// intents) and the resource id from the intent metadata
func resourceIDs(intent *stripeapi.PaymentIntent) (cartID, resourceID string) {
	resourceID = intent.Metadata[types.MetadataKeyResourceID]
	cartID = intent.Metadata[types.MetadataKeyCartID]
	if cartID == "" {
		cartID = resourceID
	}
	return cartID, resourceID
}

func decode(eventType types.StripeEventType, event *stripeapi.Event) (*payload, error) {
	if event.Data == nil {
		return nil, ierr.NewError("event has no data").
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrValidation)
	}

	var (
		data   payload
		target interface{}
	)
	switch eventType {
	case types.StripeEventInvoicePaymentSucceeded, types.StripeEventInvoicePaymentFailed:
		data.invoice = &stripeapi.Invoice{}
		target = data.invoice
	case types.StripeEventPaymentIntentSucceeded,
		types.StripeEventPaymentIntentAmountCapturableUpd:
		data.paymentIntent = &stripeapi.PaymentIntent{}
		target = data.paymentIntent
	case types.StripeEventCustomerSubscriptionDeleted:
		data.subscription = &stripeapi.Subscription{}
		target = data.subscription
	default:
		return nil, ierr.NewErrorf("unsupported event type %s", eventType).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := json.Unmarshal(event.Data.Raw, target); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrValidation)
	}
	return &data, nil
}
