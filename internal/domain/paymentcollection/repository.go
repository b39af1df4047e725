package paymentcollection

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, id string) (*PaymentCollection, error)
	ListPayments(ctx context.Context, collectionID string) ([]*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	// MarkPaymentCaptured sets captured_at if unset and reports whether it did
	MarkPaymentCaptured(ctx context.Context, paymentID string, capturedAt time.Time) (bool, error)
}
