package types

import "strings"

// OrderPaymentStatus tracks the payment side of an order
type OrderPaymentStatus string

const (
	OrderPaymentStatusNotPaid  OrderPaymentStatus = "not_paid"
	OrderPaymentStatusAwaiting OrderPaymentStatus = "awaiting"
	OrderPaymentStatusCaptured OrderPaymentStatus = "captured"
	OrderPaymentStatusRefunded OrderPaymentStatus = "refunded"
	OrderPaymentStatusCanceled OrderPaymentStatus = "canceled"
)

// PaymentSessionStatus is the provider-agnostic state of a payment session
type PaymentSessionStatus string

const (
	PaymentSessionStatusPending      PaymentSessionStatus = "pending"
	PaymentSessionStatusRequiresMore PaymentSessionStatus = "requires_more"
	PaymentSessionStatusAuthorized   PaymentSessionStatus = "authorized"
	PaymentSessionStatusCanceled     PaymentSessionStatus = "canceled"
	PaymentSessionStatusError        PaymentSessionStatus = "error"
)

// PaymentCollectionPrefix tags resource ids that denote payment collections
const PaymentCollectionPrefix = "paycol"

// IsPaymentCollection reports whether a resource id denotes a payment
// collection rather than a cart.
func IsPaymentCollection(resourceID string) bool {
	return resourceID != "" && strings.HasPrefix(resourceID, PaymentCollectionPrefix)
}
