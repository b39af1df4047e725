package stripe

import (
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/laundrybox/reconciler/internal/validator"
)

// InitiatePaymentRequest starts the subscription payment for a cart
type InitiatePaymentRequest struct {
	CartID string `json:"cart_id" validate:"required,idprefix=cart"`
}

func (r *InitiatePaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// InitiatePaymentResponse carries what the storefront needs to confirm the payment
type InitiatePaymentResponse struct {
	PaymentIntentID      string                     `json:"payment_intent_id"`
	ClientSecret         string                     `json:"client_secret,omitempty"`
	StripeSubscriptionID string                     `json:"stripe_subscription_id"`
	StripeCustomerID     string                     `json:"stripe_customer_id"`
	Status               types.PaymentSessionStatus `json:"status"`
}

// UpdatePaymentRequest applies the cart's promotion code to the subscription
type UpdatePaymentRequest struct {
	CartID               string `json:"cart_id" validate:"required,idprefix=cart"`
	StripeSubscriptionID string `json:"stripe_subscription_id" validate:"required"`
}

func (r *UpdatePaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RefundPaymentRequest refunds part or all of a captured payment intent.
// Amount is in the currency's smallest unit; zero refunds everything.
type RefundPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	Amount          int64  `json:"amount,omitempty" validate:"gte=0"`
}

func (r *RefundPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PaymentStatusResponse represents payment status from Stripe
type PaymentStatusResponse struct {
	PaymentIntentID string                     `json:"payment_intent_id"`
	GatewayStatus   string                     `json:"gateway_status"`
	Status          types.PaymentSessionStatus `json:"status"`
}

// PaymentDetailsResponse is a payment session with the intent's amounts
type PaymentDetailsResponse struct {
	PaymentStatusResponse
	Amount           int64             `json:"amount"`
	AmountCapturable int64             `json:"amount_capturable"`
	Currency         string            `json:"currency"`
	CustomerID       string            `json:"customer_id,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}
