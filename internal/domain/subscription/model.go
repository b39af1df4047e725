package subscription

import (
	"time"

	"github.com/laundrybox/reconciler/internal/types"
)

// Subscription mirrors a Stripe subscription. There is exactly one row per
// gateway subscription id.
type Subscription struct {
	// ID is the internal identifier
	ID string `db:"id" json:"id"`

	// StripeSubscriptionID is the gateway id, unique across rows
	StripeSubscriptionID string `db:"stripe_subscription_id" json:"stripe_subscription_id"`

	// Status is the mapped internal status
	Status types.SubscriptionStatus `db:"status" json:"status"`

	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `db:"current_period_end" json:"current_period_end"`

	// ProductID and CustomerID come from the gateway subscription metadata
	ProductID  string `db:"product_id" json:"product_id"`
	CustomerID string `db:"customer_id" json:"customer_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StatusUpdate holds the fields refreshed on every lifecycle event
type StatusUpdate struct {
	Status             types.SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// Apply copies the update onto the subscription
func (s *Subscription) Apply(u StatusUpdate) {
	s.Status = u.Status
	s.CurrentPeriodStart = u.CurrentPeriodStart
	s.CurrentPeriodEnd = u.CurrentPeriodEnd
}
