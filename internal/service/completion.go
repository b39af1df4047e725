package service

import (
	"context"
	"fmt"

	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type CompletionService = interfaces.CompletionService

type completionService struct {
	ServiceParams
	strategy CartCompletionStrategy
}

// NewCompletionService builds the completion orchestrator. A nil strategy
// falls back to the default cart completion strategy.
func NewCompletionService(params ServiceParams, strategy CartCompletionStrategy) CompletionService {
	if strategy == nil {
		strategy = NewCartCompletionStrategy(params)
	}
	return &completionService{
		ServiceParams: params,
		strategy:      strategy,
	}
}

// CompleteCartIfNecessary ensures an order exists for the cart, using the
// event id as idempotency key. Runs in the caller's transaction.
func (s *completionService) CompleteCartIfNecessary(ctx context.Context, eventID, cartID string) error {
	orderService := NewOrderService(s.ServiceParams)
	idempotencyKeyService := NewIdempotencyKeyService(s.ServiceParams)
	cartService := NewCartService(s.ServiceParams)

	existing, err := orderService.RetrieveByCartID(ctx, cartID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.Logger.Debugw("order already exists for cart, skipping completion",
			"cart_id", cartID,
			"order_id", existing.ID,
			"event_id", eventID,
		)
		return nil
	}

	key, err := idempotencyKeyService.Retrieve(ctx, types.StripeHooksRequestPath, eventID)
	if err != nil {
		return err
	}
	if key == nil {
		key, err = idempotencyKeyService.Create(ctx, types.StripeHooksRequestPath, eventID)
		if err != nil {
			return err
		}
	}

	c, err := cartService.Retrieve(ctx, cartID, false)
	if err != nil {
		return err
	}

	var cc interfaces.CompletionContext
	if c != nil {
		cc.IP = c.IP()
	}

	resp, err := s.strategy.Complete(ctx, cartID, key, cc)
	if err != nil {
		return err
	}

	if resp.ResponseCode != 200 {
		message, _ := resp.ResponseBody["message"].(string)
		code, _ := resp.ResponseBody["code"].(string)
		return ierr.NewError(message).
			WithHint("Cart completion did not succeed").
			WithDetail(fmt.Sprintf("code=%s response_code=%d", code, resp.ResponseCode)).
			WithReportableDetails(map[string]any{
				"cart_id":       cartID,
				"event_id":      eventID,
				"code":          code,
				"response_code": resp.ResponseCode,
			}).
			Mark(ierr.ErrConflict)
	}

	return nil
}
