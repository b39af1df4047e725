package laundryorder

import (
	"time"

	"github.com/laundrybox/reconciler/internal/types"
)

// LaundryOrder is one scheduled recurring collection for a subscription
type LaundryOrder struct {
	ID                string                   `db:"id" json:"id"`
	SubscriptionID    string                   `db:"subscription_id" json:"subscription_id"`
	CustomerID        string                   `db:"customer_id" json:"customer_id"`
	ShippingAddressID *string                  `db:"shipping_address_id" json:"shipping_address_id,omitempty"`
	Status            types.LaundryOrderStatus `db:"status" json:"status"`
	PlacedAt          time.Time                `db:"placed_at" json:"placed_at"`
	CreatedAt         time.Time                `db:"created_at" json:"created_at"`
}
