package testutil

import (
	"context"
	"sync"

	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type mockTxKey struct{}

// MockPostgresClient runs transaction bodies directly and records how many
// transactions and savepoints were opened
type MockPostgresClient struct {
	mu         sync.Mutex
	logger     *logger.Logger
	txCount    int
	savepoints int
	rollbacks  int
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction. Nested calls are
// counted as savepoints.
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	c.mu.Lock()
	if ctx.Value(mockTxKey{}) != nil {
		c.savepoints++
	} else {
		c.txCount++
		ctx = context.WithValue(ctx, mockTxKey{}, true)
	}
	c.mu.Unlock()

	if err := fn(ctx); err != nil {
		c.mu.Lock()
		c.rollbacks++
		c.mu.Unlock()
		return err
	}
	return nil
}

// InTx reports whether ctx is inside a WithTx call
func (c *MockPostgresClient) InTx(ctx context.Context) bool {
	return ctx.Value(mockTxKey{}) != nil
}

// TxCount returns the number of outer transactions opened
func (c *MockPostgresClient) TxCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txCount
}

// SavepointCount returns the number of nested transactions opened
func (c *MockPostgresClient) SavepointCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.savepoints
}

// RollbackCount returns the number of transaction bodies that failed
func (c *MockPostgresClient) RollbackCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbacks
}

// Reset clears the counters
func (c *MockPostgresClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txCount, c.savepoints, c.rollbacks = 0, 0, 0
}
