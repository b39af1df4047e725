package paymentcollection

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCollection groups ad-hoc payments outside the cart flow. Its id
// always carries the "paycol" prefix.
type PaymentCollection struct {
	ID           string          `db:"id" json:"id"`
	Status       string          `db:"status" json:"status"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	CurrencyCode string          `db:"currency_code" json:"currency_code"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`

	Payments []*Payment `db:"-" json:"payments,omitempty"`
}

// FindPaymentByGatewayID returns the payment whose gateway id matches, or nil
func (c *PaymentCollection) FindPaymentByGatewayID(gatewayPaymentID string) *Payment {
	for _, p := range c.Payments {
		if p.GatewayPaymentID == gatewayPaymentID {
			return p
		}
	}
	return nil
}

type Payment struct {
	ID                  string `db:"id" json:"id"`
	PaymentCollectionID string `db:"payment_collection_id" json:"payment_collection_id"`
	// GatewayPaymentID is the Stripe payment intent id (data.id)
	GatewayPaymentID string          `db:"gateway_payment_id" json:"gateway_payment_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	CurrencyCode     string          `db:"currency_code" json:"currency_code"`
	// CapturedAt is set exactly once
	CapturedAt *time.Time `db:"captured_at" json:"captured_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

func (p *Payment) IsCaptured() bool {
	return p.CapturedAt != nil
}
