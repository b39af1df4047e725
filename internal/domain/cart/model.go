package cart

import (
	"time"

	"github.com/laundrybox/reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// Keys read from a cart's context blob
const (
	ContextKeyIP                 = "ip"
	ContextKeyPromoID            = "promo_id"
	ContextKeyPaymentDescription = "payment_description"
)

type Cart struct {
	ID         string `db:"id" json:"id"`
	CustomerID string `db:"customer_id" json:"customer_id"`
	Email      string `db:"email" json:"email"`
	// Context carries request metadata captured at checkout (ip, promo_id, ...)
	Context      types.JSONMap `db:"context" json:"context,omitempty"`
	CurrencyCode string        `db:"currency_code" json:"currency_code"`
	// PaymentIntentID is set once a payment has been initiated for the cart
	PaymentIntentID *string    `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Items []*LineItem `db:"-" json:"items,omitempty"`
}

// IP returns the originating IP address captured at checkout, if any
func (c *Cart) IP() string {
	return c.Context.GetString(ContextKeyIP)
}

// IsCompleted reports whether the cart has been turned into an order
func (c *Cart) IsCompleted() bool {
	return c.CompletedAt != nil
}

// Total sums the line items
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type LineItem struct {
	ID            string `db:"id" json:"id"`
	CartID        string `db:"cart_id" json:"cart_id"`
	VariantID     string `db:"variant_id" json:"variant_id"`
	ProductID     string `db:"product_id" json:"product_id"`
	ProductTypeID string `db:"product_type_id" json:"product_type_id"`
	// PriceID is the gateway price the variant is billed with
	PriceID   string          `db:"price_id" json:"price_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
}

func (i *LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
