package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	v1 "github.com/laundrybox/reconciler/internal/api/v1"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/integration/stripe/webhook"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
	router    *gin.Engine
	db        *testutil.MockPostgresClient
	lifecycle *testutil.MockSubscriptionLifecycleService
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNoopLogger()

	s.db = testutil.NewMockPostgresClient(log)
	s.lifecycle = &testutil.MockSubscriptionLifecycleService{}
	stripeHandler := webhook.NewHandler(testutil.NewFakeStripeGateway(), s.db, &webhook.ServiceDependencies{
		CompletionService:            &testutil.MockCompletionService{},
		CaptureService:               &testutil.MockCaptureService{},
		SubscriptionLifecycleService: s.lifecycle,
	}, nil, log)

	s.router = NewRouter(Handlers{
		Health:  v1.NewHealthHandler(log),
		Webhook: v1.NewWebhookHandler(stripeHandler, log),
		Payment: v1.NewPaymentHandler(nil, log),
	}, config.GetDefaultConfig(), log)
}

func (s *RouterSuite) post(path string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(types.HeaderStripeSignature, signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealth() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestMissingSignature() {
	w := s.post("/stripe/hooks", []byte(`{}`), "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(0, s.db.TxCount())
}

func (s *RouterSuite) TestBothWebhookPaths() {
	s.lifecycle.On("OnSubscriptionDeleted", mock.Anything, "sub_1").Return(nil).Twice()

	for _, path := range []string{"/stripe/hooks", "/v1/webhooks/stripe"} {
		body, signature, err := testutil.SignedEvent("evt_"+path, "customer.subscription.deleted", map[string]interface{}{
			"id":     "sub_1",
			"object": "subscription",
		})
		require.NoError(s.T(), err)

		w := s.post(path, body, signature)
		s.Equal(http.StatusOK, w.Code, path)
	}

	s.lifecycle.AssertExpectations(s.T())
	s.Equal(2, s.db.TxCount())
}

func (s *RouterSuite) TestUnhandledEventType() {
	body, signature, err := testutil.SignedEvent("evt_1", "customer.created", map[string]interface{}{
		"id":     "cus_1",
		"object": "customer",
	})
	s.Require().NoError(err)

	w := s.post("/stripe/hooks", body, signature)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *RouterSuite) TestInitiatePaymentRejectsBadBody() {
	w := s.post("/v1/payments/initiate", []byte(`{not json`), "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Invalid request format")
}

func (s *RouterSuite) TestPaymentSessionRoutes() {
	routes := map[string]bool{}
	for _, r := range s.router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /v1/payments/:id",
		"DELETE /v1/payments/:id",
		"POST /v1/payments/:id/authorize",
		"GET /v1/payments/:id/status",
	} {
		s.True(routes[want], want)
	}
}
