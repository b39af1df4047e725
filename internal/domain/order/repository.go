package order

import (
	"context"

	"github.com/laundrybox/reconciler/internal/types"
)

type Repository interface {
	// Create inserts the order; a second order for the same cart is marked ErrAlreadyExists
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByCartID(ctx context.Context, cartID string) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status types.OrderPaymentStatus) error
}
