package interfaces

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/domain/customer"
	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
	"github.com/laundrybox/reconciler/internal/domain/order"
	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	"github.com/laundrybox/reconciler/internal/domain/subscription"
	"github.com/stripe/stripe-go/v82"
)

// Lookups named Retrieve* return (nil, nil) when the entity does not exist.

// IdempotencyKeyService defines the interface for idempotency key operations
type IdempotencyKeyService interface {
	Retrieve(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error)
	Create(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error)
}

// CartService defines the interface for cart operations
type CartService interface {
	Retrieve(ctx context.Context, id string, withItems bool) (*cart.Cart, error)
}

// CustomerService defines the interface for customer operations
type CustomerService interface {
	Retrieve(ctx context.Context, id string) (*customer.Customer, error)
	GetDefaultShippingAddressID(ctx context.Context, customerID string) (*string, error)
	LinkStripeCustomer(ctx context.Context, customerID, stripeCustomerID string) error
}

// OrderService defines the interface for order operations
type OrderService interface {
	RetrieveByCartID(ctx context.Context, cartID string) (*order.Order, error)
	CreateFromCart(ctx context.Context, c *cart.Cart) (*order.Order, error)
	CapturePayment(ctx context.Context, orderID string) (*order.Order, error)
}

// PaymentCollectionService defines the interface for payment collection operations
type PaymentCollectionService interface {
	Retrieve(ctx context.Context, id string, withPayments bool) (*paymentcollection.PaymentCollection, error)
	Capture(ctx context.Context, paymentID string) (*paymentcollection.Payment, error)
}

// CompletionContext carries request metadata forwarded to the completion strategy
type CompletionContext struct {
	IP string `json:"ip,omitempty"`
}

// CompletionResponse is the stored outcome of a cart completion
type CompletionResponse struct {
	ResponseCode int                    `json:"response_code"`
	ResponseBody map[string]interface{} `json:"response_body"`
}

// CartCompletionStrategy is the idempotent gate that turns a cart into an order
type CartCompletionStrategy interface {
	Complete(ctx context.Context, cartID string, key *idempotencykey.IdempotencyKey, cc CompletionContext) (*CompletionResponse, error)
}

// CompletionService ensures an order exists exactly once per cart
type CompletionService interface {
	CompleteCartIfNecessary(ctx context.Context, eventID, cartID string) error
}

// CaptureService ensures payments are captured exactly once
type CaptureService interface {
	CapturePaymentIfNecessary(ctx context.Context, cartID string) error
	CapturePaymentCollectionIfNecessary(ctx context.Context, resourceID, paymentIntentID string) error
}

// SubscriptionLifecycleService drives subscription rows from gateway lifecycle events
type SubscriptionLifecycleService interface {
	OnInvoicePaymentSucceeded(ctx context.Context, invoice *stripe.Invoice) error
	OnInvoicePaymentFailed(ctx context.Context, invoice *stripe.Invoice) error
	OnSubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error
	EnsureSubscriptionForPaymentIntent(ctx context.Context, stripeSubscriptionID string) error
	CreateSubscription(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error)
	RetrieveByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error)
}

// LaundryOrderService schedules recurring collections
type LaundryOrderService interface {
	Schedule(ctx context.Context, sub *subscription.Subscription, shippingAddressID *string, now time.Time) (*laundryorder.LaundryOrder, error)
}
