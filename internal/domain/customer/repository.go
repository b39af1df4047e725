package customer

import (
	"context"

	"github.com/laundrybox/reconciler/internal/types"
)

// Repository defines the interface for customer data access
type Repository interface {
	Get(ctx context.Context, id string) (*Customer, error)
	UpdateMetadata(ctx context.Context, id string, metadata types.Metadata) error
}
