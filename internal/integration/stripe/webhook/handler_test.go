package webhook

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/laundrybox/reconciler/internal/config"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/sentry"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	stripeapi "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type HandlerSuite struct {
	suite.Suite
	ctx        context.Context
	db         *testutil.MockPostgresClient
	gateway    *testutil.FakeStripeGateway
	completion *testutil.MockCompletionService
	capture    *testutil.MockCaptureService
	lifecycle  *testutil.MockSubscriptionLifecycleService
	logs       *observer.ObservedLogs
	handler    *Handler
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	core, logs := observer.New(zap.DebugLevel)
	log := logger.NewWithCore(core)

	s.ctx = testutil.SetupContext()
	s.logs = logs
	s.db = testutil.NewMockPostgresClient(log)
	s.gateway = testutil.NewFakeStripeGateway()
	s.completion = &testutil.MockCompletionService{}
	s.capture = &testutil.MockCaptureService{}
	s.lifecycle = &testutil.MockSubscriptionLifecycleService{}

	s.handler = NewHandler(s.gateway, s.db, &ServiceDependencies{
		CompletionService:            s.completion,
		CaptureService:               s.capture,
		SubscriptionLifecycleService: s.lifecycle,
	}, nil, log)
}

func (s *HandlerSuite) TearDownTest() {
	s.completion.AssertExpectations(s.T())
	s.capture.AssertExpectations(s.T())
	s.lifecycle.AssertExpectations(s.T())
}

func (s *HandlerSuite) deliver(eventID string, eventType stripeapi.EventType, object map[string]interface{}) int {
	body, signature, err := testutil.SignedEvent(eventID, eventType, object)
	s.Require().NoError(err)
	return s.handler.Handle(s.ctx, body, signature)
}

func paymentIntent(id string, metadata map[string]string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"object":   "payment_intent",
		"status":   "succeeded",
		"metadata": metadata,
	}
}

func invoice(id, stripeSubscriptionID string) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"object": "invoice",
		"parent": map[string]interface{}{
			"type": "subscription_details",
			"subscription_details": map[string]interface{}{
				"subscription": stripeSubscriptionID,
			},
		},
	}
}

// withEventID matches a context carrying the event being processed
func withEventID(eventID string) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return types.GetEventID(ctx) == eventID
	})
}

func (s *HandlerSuite) warnings() []observer.LoggedEntry {
	return s.logs.FilterLevelExact(zapcore.WarnLevel).All()
}

func (s *HandlerSuite) TestInvalidSignature() {
	body, _, err := testutil.SignedEvent("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", nil))
	s.Require().NoError(err)

	s.Equal(http.StatusBadRequest, s.handler.Handle(s.ctx, body, "t=1,v1=deadbeef"))
	s.Equal(http.StatusBadRequest, s.handler.Handle(s.ctx, body, ""))
	s.Equal(0, s.db.TxCount())
}

func (s *HandlerSuite) TestGarbledPayload() {
	body, signature, err := testutil.SignPayload([]byte("{not json"))
	s.Require().NoError(err)

	s.Equal(http.StatusBadRequest, s.handler.Handle(s.ctx, body, signature))
	s.Equal(0, s.db.TxCount())
}

func (s *HandlerSuite) TestUndecodableObject() {
	status := s.deliver("evt_1", "payment_intent.succeeded", map[string]interface{}{
		"id":       "pi_1",
		"object":   "payment_intent",
		"metadata": "not-a-map",
	})

	s.Equal(http.StatusBadRequest, status)
	s.Equal(0, s.db.TxCount())
}

func (s *HandlerSuite) TestUnrecognizedEventType() {
	status := s.deliver("evt_1", "charge.refunded", map[string]interface{}{"id": "ch_1", "object": "charge"})

	s.Equal(http.StatusNoContent, status)
	s.Equal(0, s.db.TxCount())
}

func (s *HandlerSuite) TestPaymentFailedIsLoggedOnly() {
	intent := paymentIntent("pi_1", map[string]string{"cart_id": "cart_1"})
	intent["last_payment_error"] = map[string]interface{}{
		"message": "Your card was declined.",
	}

	s.Equal(http.StatusOK, s.deliver("evt_1", "payment_intent.payment_failed", intent))
	s.Equal(0, s.db.TxCount())

	errs := s.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	s.Require().Len(errs, 1)
	s.Equal("The payment of the payment intent pi_1 has failed\nYour card was declined.", errs[0].Message)
}

func (s *HandlerSuite) TestPaymentFailedWithUndecodableObject() {
	status := s.deliver("evt_1", "payment_intent.payment_failed", map[string]interface{}{
		"id":       "pi_1",
		"object":   "payment_intent",
		"metadata": "not-a-map",
		"last_payment_error": map[string]interface{}{
			"message": "Insufficient funds.",
		},
	})

	s.Equal(http.StatusOK, status)
	s.Equal(0, s.db.TxCount())

	errs := s.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	s.Require().Len(errs, 1)
	s.Equal("The payment of the payment intent pi_1 has failed\nInsufficient funds.", errs[0].Message)
}

func (s *HandlerSuite) TestPaymentFailedWithMalformedReason() {
	status := s.deliver("evt_1", "payment_intent.payment_failed", map[string]interface{}{
		"id":                 "pi_1",
		"object":             "payment_intent",
		"last_payment_error": "declined",
	})

	s.Equal(http.StatusOK, status)
	s.Equal(0, s.db.TxCount())

	errs := s.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	s.Require().Len(errs, 1)
	s.Equal("The payment of the payment intent pi_1 has failed\n", errs[0].Message)
}

func (s *HandlerSuite) TestDispatchWarnsOnUnroutedType() {
	s.NoError(s.handler.dispatch(s.ctx, types.StripeEventType("charge.refunded"), "evt_1", &payload{}))

	warnings := s.warnings()
	s.Require().Len(warnings, 1)
	s.Equal("no route for Stripe webhook event type", warnings[0].Message)
}

func (s *HandlerSuite) TestDispatchTracedWithSentryDisabled() {
	cfg := config.GetDefaultConfig()
	cfg.Sentry.Enabled = false
	log := logger.NewNoopLogger()

	handler := NewHandler(s.gateway, s.db, &ServiceDependencies{
		CompletionService:            s.completion,
		CaptureService:               s.capture,
		SubscriptionLifecycleService: s.lifecycle,
	}, sentry.NewSentryService(cfg, log), log)

	s.lifecycle.On("OnInvoicePaymentSucceeded", mock.Anything, mock.Anything).Return(nil).Once()

	body, signature, err := testutil.SignedEvent("evt_1", "invoice.payment_succeeded", invoice("in_1", "sub_1"))
	s.Require().NoError(err)
	s.Equal(http.StatusOK, handler.Handle(s.ctx, body, signature))
	s.Equal(1, s.db.TxCount())
}

func (s *HandlerSuite) TestInvoicePaymentSucceeded() {
	s.lifecycle.On("OnInvoicePaymentSucceeded", withEventID("evt_1"), mock.MatchedBy(func(inv *stripeapi.Invoice) bool {
		return inv.ID == "in_1" && inv.Parent.SubscriptionDetails.Subscription.ID == "sub_1"
	})).Return(nil).Once()

	s.Equal(http.StatusOK, s.deliver("evt_1", "invoice.payment_succeeded", invoice("in_1", "sub_1")))
	s.Equal(1, s.db.TxCount())
}

func (s *HandlerSuite) TestInvoicePaymentFailed() {
	s.lifecycle.On("OnInvoicePaymentFailed", mock.Anything, mock.MatchedBy(func(inv *stripeapi.Invoice) bool {
		return inv.ID == "in_1"
	})).Return(nil).Once()

	s.Equal(http.StatusOK, s.deliver("evt_1", "invoice.payment_failed", invoice("in_1", "sub_1")))
}

func (s *HandlerSuite) TestSubscriptionDeleted() {
	s.lifecycle.On("OnSubscriptionDeleted", mock.Anything, "sub_1").Return(nil).Once()

	status := s.deliver("evt_1", "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_1",
		"object": "subscription",
		"status": "canceled",
	})
	s.Equal(http.StatusOK, status)
}

func (s *HandlerSuite) TestPaymentIntentSucceededForCart() {
	s.completion.On("CompleteCartIfNecessary", withEventID("evt_1"), "evt_1", "cart_1").Return(nil).Once()
	s.capture.On("CapturePaymentIfNecessary", mock.Anything, "cart_1").Return(nil).Once()
	s.lifecycle.On("EnsureSubscriptionForPaymentIntent", mock.Anything, "sub_1").Return(nil).Once()

	status := s.deliver("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", map[string]string{
		"cart_id":         "cart_1",
		"subscription_id": "sub_1",
	}))

	s.Equal(http.StatusOK, status)
	s.Equal(1, s.db.TxCount())
}

func (s *HandlerSuite) TestPaymentIntentSucceededFallsBackToResourceID() {
	s.completion.On("CompleteCartIfNecessary", mock.Anything, "evt_1", "cart_1").Return(nil).Once()
	s.capture.On("CapturePaymentIfNecessary", mock.Anything, "cart_1").Return(nil).Once()

	status := s.deliver("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", map[string]string{
		"resource_id": "cart_1",
	}))

	s.Equal(http.StatusOK, status)
	s.lifecycle.AssertNotCalled(s.T(), "EnsureSubscriptionForPaymentIntent", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestPaymentIntentSucceededForPaymentCollection() {
	s.capture.On("CapturePaymentCollectionIfNecessary", mock.Anything, "paycol_1", "pi_1").Return(nil).Once()

	status := s.deliver("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", map[string]string{
		"resource_id": "paycol_1",
	}))

	s.Equal(http.StatusOK, status)
	s.completion.AssertNotCalled(s.T(), "CompleteCartIfNecessary", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestPaymentIntentSucceededWithoutResource() {
	s.lifecycle.On("EnsureSubscriptionForPaymentIntent", mock.Anything, "sub_1").Return(nil).Once()

	status := s.deliver("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", map[string]string{
		"subscription_id": "sub_1",
	}))

	s.Equal(http.StatusOK, status)
}

func (s *HandlerSuite) TestAmountCapturableUpdatedCompletesOnly() {
	s.completion.On("CompleteCartIfNecessary", mock.Anything, "evt_1", "cart_1").Return(nil).Once()

	status := s.deliver("evt_1", "payment_intent.amount_capturable_updated", paymentIntent("pi_1", map[string]string{
		"cart_id": "cart_1",
	}))

	s.Equal(http.StatusOK, status)
	s.capture.AssertNotCalled(s.T(), "CapturePaymentIfNecessary", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestAmountCapturableUpdatedSkipsPaymentCollection() {
	status := s.deliver("evt_1", "payment_intent.amount_capturable_updated", paymentIntent("pi_1", map[string]string{
		"resource_id": "paycol_1",
	}))

	s.Equal(http.StatusOK, status)
}

func (s *HandlerSuite) TestSerializationFailureIsRetried() {
	serialization := ierr.WithError(&pq.Error{
		Code:    "40001",
		Message: "could not serialize access due to concurrent update",
	}).Mark(ierr.ErrDatabase)
	s.completion.On("CompleteCartIfNecessary", mock.Anything, "evt_1", "cart_1").Return(serialization).Once()

	status := s.deliver("evt_1", "payment_intent.succeeded", paymentIntent("pi_1", map[string]string{
		"cart_id": "cart_1",
	}))

	s.Equal(http.StatusConflict, status)
	s.Equal(1, s.db.RollbackCount())

	warnings := s.warnings()
	s.Require().Len(warnings, 1)
	s.True(strings.HasPrefix(warnings[0].Message,
		"Stripe webhook payment_intent.succeeded handle failed. This can happen when this webhook is triggered during a cart completion and can be ignored. This event should be retried automatically.\n"))
	s.Contains(warnings[0].Message, "could not serialize access")
}

func (s *HandlerSuite) TestConflictIsRetried() {
	conflict := ierr.NewError("Subscription with stripe id sub_1 already exists in the database.").
		Mark(ierr.ErrConflict)
	s.lifecycle.On("OnInvoicePaymentSucceeded", mock.Anything, mock.Anything).Return(conflict).Once()

	s.Equal(http.StatusConflict, s.deliver("evt_1", "invoice.payment_succeeded", invoice("in_1", "sub_1")))

	warnings := s.warnings()
	s.Require().Len(warnings, 1)
	s.Equal("Stripe webhook invoice.payment_succeeded handle failed.\nSubscription with stripe id sub_1 already exists in the database.", warnings[0].Message)
}

func (s *HandlerSuite) TestUnexpectedErrorIsRetried() {
	s.lifecycle.On("OnSubscriptionDeleted", mock.Anything, "sub_1").
		Return(ierr.NewError("connection reset").Mark(ierr.ErrDatabase)).Once()

	status := s.deliver("evt_1", "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_1",
		"object": "subscription",
	})

	s.Equal(http.StatusConflict, status)
	warnings := s.warnings()
	s.Require().Len(warnings, 1)
	s.Equal("Stripe webhook customer.subscription.deleted handling failed\nconnection reset", warnings[0].Message)
}
