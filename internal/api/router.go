package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/laundrybox/reconciler/internal/api/v1"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/rest/middleware"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
	Payment *v1.PaymentHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)
	router.POST("/health", handlers.Health.Health)

	// Stripe posts to the legacy hooks path; both paths share one handler
	router.POST("/stripe/hooks", handlers.Webhook.HandleStripeWebhook)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	logger.Debugw("registered routes", "count", len(router.Routes()))
	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	payments := router.Group("/payments")
	{
		payments.POST("/initiate", handlers.Payment.InitiatePayment)
		payments.POST("/update", handlers.Payment.UpdatePayment)
		payments.GET("/:id", handlers.Payment.RetrievePayment)
		payments.DELETE("/:id", handlers.Payment.DeletePayment)
		payments.GET("/:id/status", handlers.Payment.GetPaymentStatus)
		payments.POST("/:id/authorize", handlers.Payment.AuthorizePayment)
		payments.POST("/:id/capture", handlers.Payment.CapturePayment)
		payments.POST("/:id/cancel", handlers.Payment.CancelPayment)
		payments.POST("/refund", handlers.Payment.RefundPayment)
	}
}
