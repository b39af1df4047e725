package postgres

import "context"

// IClient is the transaction boundary used by services. Calling WithTx while
// a transaction is already open in ctx opens a nested scope (a savepoint)
// that commits or rolls back independently of its parent.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
