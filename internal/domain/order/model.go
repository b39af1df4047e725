package order

import (
	"time"

	"github.com/laundrybox/reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// Order is created from a completed cart. There is at most one order per cart.
type Order struct {
	ID            string                   `db:"id" json:"id"`
	CartID        string                   `db:"cart_id" json:"cart_id"`
	CustomerID    string                   `db:"customer_id" json:"customer_id"`
	PaymentStatus types.OrderPaymentStatus `db:"payment_status" json:"payment_status"`
	// PaymentIntentID is the gateway payment intent authorised for this order
	PaymentIntentID *string         `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Total           decimal.Decimal `db:"total" json:"total"`
	CurrencyCode    string          `db:"currency_code" json:"currency_code"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

func (o *Order) IsCaptured() bool {
	return o.PaymentStatus == types.OrderPaymentStatusCaptured
}
