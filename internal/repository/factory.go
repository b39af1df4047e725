package repository

import (
	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
	"github.com/laundrybox/reconciler/internal/domain/order"
	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	"github.com/laundrybox/reconciler/internal/domain/subscription"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
	postgresRepo "github.com/laundrybox/reconciler/internal/repository/postgres"
)

func NewIdempotencyKeyRepository(db *postgres.DB, logger *logger.Logger) idempotencykey.Repository {
	return postgresRepo.NewIdempotencyKeyRepository(db, logger)
}

func NewCartRepository(db *postgres.DB, logger *logger.Logger) cart.Repository {
	return postgresRepo.NewCartRepository(db, logger)
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}

func NewPaymentCollectionRepository(db *postgres.DB, logger *logger.Logger) paymentcollection.Repository {
	return postgresRepo.NewPaymentCollectionRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewLaundryOrderRepository(db *postgres.DB, logger *logger.Logger) laundryorder.Repository {
	return postgresRepo.NewLaundryOrderRepository(db, logger)
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(db, logger)
}
