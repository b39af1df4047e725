package types

// StripeEventType is the closed set of Stripe webhook events the dispatcher acts on
type StripeEventType string

const (
	StripeEventInvoicePaymentSucceeded          StripeEventType = "invoice.payment_succeeded"
	StripeEventInvoicePaymentFailed             StripeEventType = "invoice.payment_failed"
	StripeEventPaymentIntentSucceeded           StripeEventType = "payment_intent.succeeded"
	StripeEventPaymentIntentAmountCapturableUpd StripeEventType = "payment_intent.amount_capturable_updated"
	StripeEventPaymentIntentPaymentFailed       StripeEventType = "payment_intent.payment_failed"
	StripeEventCustomerSubscriptionDeleted      StripeEventType = "customer.subscription.deleted"
)

// IsRecognized reports whether the dispatcher routes this event type
func (t StripeEventType) IsRecognized() bool {
	switch t {
	case StripeEventInvoicePaymentSucceeded,
		StripeEventInvoicePaymentFailed,
		StripeEventPaymentIntentSucceeded,
		StripeEventPaymentIntentAmountCapturableUpd,
		StripeEventPaymentIntentPaymentFailed,
		StripeEventCustomerSubscriptionDeleted:
		return true
	}
	return false
}

const (
	// StripeHooksRequestPath scopes idempotency keys created by webhook driven cart completion
	StripeHooksRequestPath = "/stripe/hooks"

	// Payment intent metadata keys
	MetadataKeyCartID         = "cart_id"
	MetadataKeyResourceID     = "resource_id"
	MetadataKeySubscriptionID = "subscription_id"

	// Stripe subscription metadata keys
	MetadataKeyProductID  = "product_id"
	MetadataKeyCustomerID = "customer_id"

	// Customer metadata keys
	MetadataKeyStripeID                 = "stripe_id"
	MetadataKeyDefaultShippingAddressID = "default_shipping_address_id"

	// Header carrying the webhook signature
	HeaderStripeSignature = "Stripe-Signature"
	HeaderRequestID       = "X-Request-ID"
)
