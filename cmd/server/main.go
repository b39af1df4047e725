package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/laundrybox/reconciler/internal/api"
	v1 "github.com/laundrybox/reconciler/internal/api/v1"
	"github.com/laundrybox/reconciler/internal/cache"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/integration/stripe"
	"github.com/laundrybox/reconciler/internal/integration/stripe/webhook"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
	"github.com/laundrybox/reconciler/internal/repository"
	"github.com/laundrybox/reconciler/internal/sentry"
	"github.com/laundrybox/reconciler/internal/service"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/laundrybox/reconciler/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// set time to UTC
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Stripe
			stripe.NewClient,
			provideStripeGateway,

			// Repositories
			repository.NewIdempotencyKeyRepository,
			repository.NewCartRepository,
			repository.NewOrderRepository,
			repository.NewPaymentCollectionRepository,
			repository.NewSubscriptionRepository,
			repository.NewLaundryOrderRepository,
			repository.NewCustomerRepository,
		),
	)

	// Monitoring
	opts = append(opts, sentry.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCartService,
			service.NewCustomerService,
			service.NewCartCompletionStrategy,
			service.NewCompletionService,
			service.NewCaptureService,
			service.NewSubscriptionLifecycleService,

			stripe.NewPaymentProcessor,
			provideWebhookServices,
			webhook.NewHandler,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideStripeGateway(client *stripe.Client) interfaces.StripeGateway {
	return client
}

func provideWebhookServices(
	completionService service.CompletionService,
	captureService service.CaptureService,
	subscriptionLifecycleService service.SubscriptionLifecycleService,
) *webhook.ServiceDependencies {
	return &webhook.ServiceDependencies{
		CompletionService:            completionService,
		CaptureService:               captureService,
		SubscriptionLifecycleService: subscriptionLifecycleService,
	}
}

func provideHandlers(
	logger *logger.Logger,
	stripeHandler *webhook.Handler,
	paymentProcessor *stripe.PaymentProcessor,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Webhook: v1.NewWebhookHandler(stripeHandler, logger),
		Payment: v1.NewPaymentHandler(paymentProcessor, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Closing database connection...")
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
