package stripe

import (
	"context"

	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/domain/cart"
	"github.com/laundrybox/reconciler/internal/domain/customer"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

// PaymentProcessor starts and manages subscription payments at Stripe
type PaymentProcessor struct {
	client          *Client
	cartService     interfaces.CartService
	customerService interfaces.CustomerService
	cartRepo        cart.Repository
	config          config.StripeConfig
	logger          *logger.Logger
}

// NewPaymentProcessor creates a new Stripe payment processor
func NewPaymentProcessor(
	client *Client,
	cartService interfaces.CartService,
	customerService interfaces.CustomerService,
	cartRepo cart.Repository,
	cfg *config.Configuration,
	logger *logger.Logger,
) *PaymentProcessor {
	return &PaymentProcessor{
		client:          client,
		cartService:     cartService,
		customerService: customerService,
		cartRepo:        cartRepo,
		config:          cfg.Stripe,
		logger:          logger,
	}
}

// InitiatePayment creates an incomplete Stripe subscription for the cart's
// subscription item and tags its first payment intent with the cart and
// subscription ids so webhooks can be routed back.
func (p *PaymentProcessor) InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := p.cartService.Retrieve(ctx, req.CartID, true)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ierr.NewError("cart not found").
			WithHintf("Cart %s does not exist", req.CartID).
			Mark(ierr.ErrNotFound)
	}

	item, err := p.subscriptionItem(c)
	if err != nil {
		return nil, err
	}

	cus, err := p.customerService.Retrieve(ctx, c.CustomerID)
	if err != nil {
		return nil, err
	}
	if cus == nil {
		return nil, ierr.NewError("customer not found").
			WithHint("A customer is required to start a subscription payment").
			WithReportableDetails(map[string]any{"cart_id": c.ID, "customer_id": c.CustomerID}).
			Mark(ierr.ErrNotFound)
	}

	stripeCustomerID, err := p.ensureStripeCustomer(ctx, cus, c.Email)
	if err != nil {
		return nil, err
	}

	description := c.Context.GetString(cart.ContextKeyPaymentDescription)
	if description == "" {
		description = p.config.PaymentDescription
	}

	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(stripeCustomerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				Price:    stripe.String(item.PriceID),
				Quantity: stripe.Int64(item.Quantity),
			},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionCreatePaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	params.AddMetadata(types.MetadataKeyCustomerID, cus.ID)
	params.AddMetadata(types.MetadataKeyProductID, item.ProductID)
	params.AddExpand("latest_invoice.payments")

	sub, err := p.client.API().V1Subscriptions.Create(ctx, params)
	if err != nil {
		p.logger.Errorw("failed to create Stripe subscription",
			"error", err,
			"cart_id", c.ID,
		)
		return nil, ierr.WithError(err).
			WithHint("An error occurred while creating the Stripe subscription").
			WithReportableDetails(map[string]any{"cart_id": c.ID}).
			Mark(ierr.ErrHTTPClient)
	}

	intentID := LatestPaymentIntentID(sub)
	if intentID == "" {
		return nil, ierr.NewError("subscription has no payment intent").
			WithHint("Stripe did not return a payment for the first invoice").
			WithReportableDetails(map[string]any{"stripe_subscription_id": sub.ID}).
			Mark(ierr.ErrSystem)
	}

	updateParams := &stripe.PaymentIntentUpdateParams{}
	updateParams.AddMetadata(types.MetadataKeyResourceID, c.ID)
	updateParams.AddMetadata(types.MetadataKeySubscriptionID, sub.ID)
	intent, err := p.client.API().V1PaymentIntents.Update(ctx, intentID, updateParams)
	if err != nil {
		p.logger.Errorw("failed to tag payment intent",
			"error", err,
			"payment_intent_id", intentID,
		)
		return nil, ierr.WithError(err).
			WithHint("An error occurred while updating the Stripe payment intent").
			WithReportableDetails(map[string]any{"payment_intent_id": intentID}).
			Mark(ierr.ErrHTTPClient)
	}

	if err := p.cartRepo.SetPaymentIntentID(ctx, c.ID, intent.ID); err != nil {
		return nil, err
	}

	p.logger.Infow("initiated subscription payment",
		"cart_id", c.ID,
		"stripe_subscription_id", sub.ID,
		"payment_intent_id", intent.ID,
	)

	return &InitiatePaymentResponse{
		PaymentIntentID:      intent.ID,
		ClientSecret:         intent.ClientSecret,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     stripeCustomerID,
		Status:               MapPaymentIntentStatus(intent.Status),
	}, nil
}

// UpdatePayment applies the promotion code stored on the cart to the subscription
func (p *PaymentProcessor) UpdatePayment(ctx context.Context, req *UpdatePaymentRequest) (*PaymentStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := p.cartService.Retrieve(ctx, req.CartID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ierr.NewError("cart not found").
			WithHintf("Cart %s does not exist", req.CartID).
			Mark(ierr.ErrNotFound)
	}

	promoID := c.Context.GetString(cart.ContextKeyPromoID)
	if promoID == "" {
		return nil, nil
	}

	params := &stripe.SubscriptionUpdateParams{
		Discounts: []*stripe.SubscriptionUpdateDiscountParams{
			{PromotionCode: stripe.String(promoID)},
		},
	}
	params.AddExpand("latest_invoice.payments")

	sub, err := p.client.API().V1Subscriptions.Update(ctx, req.StripeSubscriptionID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("An error occurred while applying the promotion code").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": req.StripeSubscriptionID,
				"promo_id":               promoID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return p.GetPaymentStatus(ctx, LatestPaymentIntentID(sub))
}

// GetPaymentStatus maps the payment intent's gateway status onto a session status
func (p *PaymentProcessor) GetPaymentStatus(ctx context.Context, paymentIntentID string) (*PaymentStatusResponse, error) {
	intent, err := p.retrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	return statusResponse(intent), nil
}

// AuthorizePayment reports whether a confirmed intent is authorised. Stripe
// authorises on confirmation, so this only reads the current status.
func (p *PaymentProcessor) AuthorizePayment(ctx context.Context, paymentIntentID string) (*PaymentStatusResponse, error) {
	return p.GetPaymentStatus(ctx, paymentIntentID)
}

// RetrievePayment returns the payment intent behind a payment session
func (p *PaymentProcessor) RetrievePayment(ctx context.Context, paymentIntentID string) (*PaymentDetailsResponse, error) {
	intent, err := p.retrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}

	resp := &PaymentDetailsResponse{
		PaymentStatusResponse: *statusResponse(intent),
		Amount:                intent.Amount,
		AmountCapturable:      intent.AmountCapturable,
		Currency:              string(intent.Currency),
		Metadata:              intent.Metadata,
	}
	if intent.Customer != nil {
		resp.CustomerID = intent.Customer.ID
	}
	return resp, nil
}

// DeletePayment discards a payment session by canceling its intent
func (p *PaymentProcessor) DeletePayment(ctx context.Context, paymentIntentID string) (*PaymentStatusResponse, error) {
	return p.CancelPayment(ctx, paymentIntentID)
}

func (p *PaymentProcessor) retrievePaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	intent, err := p.client.API().V1PaymentIntents.Retrieve(ctx, paymentIntentID, nil)
	if err != nil {
		p.logger.Errorw("failed to get Stripe payment intent",
			"error", err,
			"payment_intent_id", paymentIntentID,
		)
		return nil, ierr.WithError(err).
			WithHint("Unable to retrieve Stripe payment intent").
			WithReportableDetails(map[string]any{"payment_intent_id": paymentIntentID}).
			Mark(ierr.ErrHTTPClient)
	}
	return intent, nil
}

func statusResponse(intent *stripe.PaymentIntent) *PaymentStatusResponse {
	return &PaymentStatusResponse{
		PaymentIntentID: intent.ID,
		GatewayStatus:   string(intent.Status),
		Status:          MapPaymentIntentStatus(intent.Status),
	}
}

// CapturePayment captures an authorised payment intent
func (p *PaymentProcessor) CapturePayment(ctx context.Context, paymentIntentID string) (*PaymentStatusResponse, error) {
	intent, err := p.client.CapturePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	return statusResponse(intent), nil
}

// CancelPayment cancels a payment intent. An intent that is already canceled
// is returned as is.
func (p *PaymentProcessor) CancelPayment(ctx context.Context, paymentIntentID string) (*PaymentStatusResponse, error) {
	intent, err := p.client.API().V1PaymentIntents.Cancel(ctx, paymentIntentID, &stripe.PaymentIntentCancelParams{})
	if err != nil {
		var stripeErr *stripe.Error
		if ierr.As(err, &stripeErr) && stripeErr.PaymentIntent != nil &&
			stripeErr.PaymentIntent.Status == stripe.PaymentIntentStatusCanceled {
			intent = stripeErr.PaymentIntent
		} else {
			return nil, ierr.WithError(err).
				WithHint("An error occurred while canceling the payment").
				WithReportableDetails(map[string]any{"payment_intent_id": paymentIntentID}).
				Mark(ierr.ErrHTTPClient)
		}
	}

	return statusResponse(intent), nil
}

// RefundPayment refunds a payment intent
func (p *PaymentProcessor) RefundPayment(ctx context.Context, req *RefundPaymentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
	}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}

	if _, err := p.client.API().V1Refunds.Create(ctx, params); err != nil {
		return ierr.WithError(err).
			WithHint("An error occurred while refunding the payment").
			WithReportableDetails(map[string]any{
				"payment_intent_id": req.PaymentIntentID,
				"amount":            req.Amount,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

// subscriptionItem returns the single subscription line item of the cart
func (p *PaymentProcessor) subscriptionItem(c *cart.Cart) (*cart.LineItem, error) {
	items := lo.Filter(c.Items, func(item *cart.LineItem, _ int) bool {
		return item.ProductTypeID == p.config.SubscriptionProductTypeID
	})

	if len(items) > 1 {
		return nil, ierr.NewError("Only one subscription item is allowed").
			WithHint("Remove the extra subscription items from the cart").
			WithReportableDetails(map[string]any{
				"cart_id":            c.ID,
				"subscription_items": len(items),
			}).
			Mark(ierr.ErrValidation)
	}
	if len(items) == 0 {
		return nil, ierr.NewError("cart has no subscription item").
			WithHint("Add a subscription product to the cart").
			WithReportableDetails(map[string]any{"cart_id": c.ID}).
			Mark(ierr.ErrValidation)
	}
	return items[0], nil
}

// ensureStripeCustomer reuses the linked Stripe customer or creates one and
// links it
func (p *PaymentProcessor) ensureStripeCustomer(ctx context.Context, cus *customer.Customer, email string) (string, error) {
	if stripeID := cus.StripeID(); stripeID != "" {
		existing, err := p.client.API().V1Customers.Retrieve(ctx, stripeID, nil)
		if err == nil && !existing.Deleted {
			return existing.ID, nil
		}
		p.logger.Warnw("linked Stripe customer is unavailable, creating a new one",
			"customer_id", cus.ID,
			"stripe_customer_id", stripeID,
			"error", err,
		)
	}

	if email == "" {
		email = cus.Email
	}
	params := &stripe.CustomerCreateParams{
		Name:  stripe.String(cus.FullName()),
		Email: stripe.String(email),
	}
	if cus.Phone != "" {
		params.Phone = stripe.String(cus.Phone)
	}

	created, err := p.client.API().V1Customers.Create(ctx, params)
	if err != nil {
		p.logger.Errorw("failed to create Stripe customer",
			"error", err,
			"customer_id", cus.ID,
		)
		return "", ierr.WithError(err).
			WithHint("An error occurred while creating a Stripe customer").
			WithReportableDetails(map[string]any{"customer_id": cus.ID}).
			Mark(ierr.ErrHTTPClient)
	}

	if err := p.customerService.LinkStripeCustomer(ctx, cus.ID, created.ID); err != nil {
		return "", err
	}
	return created.ID, nil
}

// LatestPaymentIntentID returns the payment intent paying the subscription's
// latest invoice, if it was expanded
func LatestPaymentIntentID(sub *stripe.Subscription) string {
	if sub == nil || sub.LatestInvoice == nil || sub.LatestInvoice.Payments == nil {
		return ""
	}
	for _, payment := range sub.LatestInvoice.Payments.Data {
		if payment.Payment != nil && payment.Payment.PaymentIntent != nil {
			return payment.Payment.PaymentIntent.ID
		}
	}
	return ""
}

// MapPaymentIntentStatus maps a Stripe payment intent status onto the
// provider-agnostic session status
func MapPaymentIntentStatus(status stripe.PaymentIntentStatus) types.PaymentSessionStatus {
	switch status {
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusProcessing:
		return types.PaymentSessionStatusPending
	case stripe.PaymentIntentStatusRequiresAction:
		return types.PaymentSessionStatusRequiresMore
	case stripe.PaymentIntentStatusCanceled:
		return types.PaymentSessionStatusCanceled
	case stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusSucceeded:
		return types.PaymentSessionStatusAuthorized
	default:
		return types.PaymentSessionStatusPending
	}
}
