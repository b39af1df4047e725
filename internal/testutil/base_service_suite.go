package testutil

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/cache"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/laundrybox/reconciler/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the in-memory repositories for testing
type Stores struct {
	IdempotencyKeyRepo    *InMemoryIdempotencyKeyStore
	CartRepo              *InMemoryCartStore
	OrderRepo             *InMemoryOrderStore
	PaymentCollectionRepo *InMemoryPaymentCollectionStore
	SubscriptionRepo      *InMemorySubscriptionStore
	LaundryOrderRepo      *InMemoryLaundryOrderStore
	CustomerRepo          *InMemoryCustomerStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      *MockPostgresClient
	cache   cache.Cache
	gateway *FakeStripeGateway
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Stripe = config.StripeConfig{
		SecretKey:                 "sk_test_reconciler",
		WebhookSecret:             TestWebhookSecret,
		PaymentDescription:        "Laundrybox subscription",
		SubscriptionProductTypeID: "ptyp_subscription",
	}

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		IdempotencyKeyRepo:    NewInMemoryIdempotencyKeyStore(),
		CartRepo:              NewInMemoryCartStore(),
		OrderRepo:             NewInMemoryOrderStore(),
		PaymentCollectionRepo: NewInMemoryPaymentCollectionStore(),
		SubscriptionRepo:      NewInMemorySubscriptionStore(),
		LaundryOrderRepo:      NewInMemoryLaundryOrderStore(),
		CustomerRepo:          NewInMemoryCustomerStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache(s.config)
	s.gateway = NewFakeStripeGateway()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.IdempotencyKeyRepo.Clear()
	s.stores.CartRepo.Clear()
	s.stores.OrderRepo.Clear()
	s.stores.PaymentCollectionRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
	s.stores.LaundryOrderRepo.Clear()
	s.stores.CustomerRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetGateway returns the fake Stripe gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeStripeGateway {
	return s.gateway
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// SetLogger replaces the test logger, e.g. with one built on an observer core
func (s *BaseServiceTestSuite) SetLogger(l *logger.Logger) {
	s.logger = l
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
