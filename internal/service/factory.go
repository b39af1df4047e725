package service

import (
	"github.com/laundrybox/reconciler/internal/cache"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
	"github.com/laundrybox/reconciler/internal/domain/order"
	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	"github.com/laundrybox/reconciler/internal/domain/subscription"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Stripe is the payment gateway client
	Stripe interfaces.StripeGateway

	// Repositories
	IdempotencyKeyRepo    idempotencykey.Repository
	CartRepo              cart.Repository
	OrderRepo             order.Repository
	PaymentCollectionRepo paymentcollection.Repository
	SubRepo               subscription.Repository
	LaundryOrderRepo      laundryorder.Repository
	CustomerRepo          customer.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	stripe interfaces.StripeGateway,
	idempotencyKeyRepo idempotencykey.Repository,
	cartRepo cart.Repository,
	orderRepo order.Repository,
	paymentCollectionRepo paymentcollection.Repository,
	subRepo subscription.Repository,
	laundryOrderRepo laundryorder.Repository,
	customerRepo customer.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:                logger,
		Config:                config,
		DB:                    db,
		Cache:                 cache,
		Stripe:                stripe,
		IdempotencyKeyRepo:    idempotencyKeyRepo,
		CartRepo:              cartRepo,
		OrderRepo:             orderRepo,
		PaymentCollectionRepo: paymentCollectionRepo,
		SubRepo:               subRepo,
		LaundryOrderRepo:      laundryOrderRepo,
		CustomerRepo:          customerRepo,
	}
}
