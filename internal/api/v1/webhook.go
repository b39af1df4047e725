package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/laundrybox/reconciler/internal/integration/stripe/webhook"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/types"
)

// WebhookHandler handles webhook-related endpoints
type WebhookHandler struct {
	stripeHandler *webhook.Handler
	logger        *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(stripeHandler *webhook.Handler, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		stripeHandler: stripeHandler,
		logger:        logger,
	}
}

// @Summary Handle Stripe webhook events
// @Description Verifies and reconciles a Stripe webhook delivery. The status code tells Stripe whether to redeliver.
// @Tags Webhooks
// @Accept json
// @Param Stripe-Signature header string true "Stripe webhook signature"
// @Success 200 "Event processed"
// @Success 204 "Event type not handled"
// @Failure 400 "Invalid signature or payload"
// @Failure 409 "Processing failed, redeliver"
// @Router /stripe/hooks [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Errorw("failed to read request body", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader(types.HeaderStripeSignature)
	if signature == "" {
		h.logger.Errorw("missing Stripe-Signature header")
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(h.stripeHandler.Handle(c.Request.Context(), body, signature))
}
