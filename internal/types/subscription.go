package types

// SubscriptionStatus is the internal status of a recurring subscription
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusHalted     SubscriptionStatus = "halted"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusPaused     SubscriptionStatus = "paused"
)

// MapGatewaySubscriptionStatus maps a Stripe subscription status onto the
// internal enumeration. Statuses without a dedicated mapping pass through
// unchanged, so the function is total over any input.
func MapGatewaySubscriptionStatus(status string) SubscriptionStatus {
	switch status {
	case "incomplete_expired":
		return SubscriptionStatusIncomplete
	case "trialing":
		return SubscriptionStatusActive
	case "past_due", "unpaid":
		return SubscriptionStatusHalted
	default:
		return SubscriptionStatus(status)
	}
}

// LaundryOrderStatus is the fulfillment state of a recurring laundry collection
type LaundryOrderStatus string

const (
	LaundryOrderStatusPending   LaundryOrderStatus = "pending"
	LaundryOrderStatusCollected LaundryOrderStatus = "collected"
	LaundryOrderStatusDelivered LaundryOrderStatus = "delivered"
	LaundryOrderStatusCanceled  LaundryOrderStatus = "canceled"
)
