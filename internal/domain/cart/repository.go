package cart

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	ListItems(ctx context.Context, cartID string) ([]*LineItem, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	SetPaymentIntentID(ctx context.Context, id, paymentIntentID string) error
}
