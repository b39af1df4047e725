package service

import (
	"context"
	"net/http"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type CartCompletionStrategy = interfaces.CartCompletionStrategy

// Response codes stored on the idempotency key
const (
	CompletionCodeConflict      = "conflict"
	CompletionCodeCartCompleted = "cart_completed"
	CompletionCodeNotFound      = "not_found"
	CompletionCodeInvalidCart   = "invalid_data"
)

type cartCompletionStrategy struct {
	ServiceParams
}

func NewCartCompletionStrategy(params ServiceParams) CartCompletionStrategy {
	return &cartCompletionStrategy{
		ServiceParams: params,
	}
}

// Complete turns the cart into an order under the given idempotency key. A
// key that already holds a response replays it. Runs in the caller's transaction.
func (s *cartCompletionStrategy) Complete(
	ctx context.Context,
	cartID string,
	key *idempotencykey.IdempotencyKey,
	cc interfaces.CompletionContext,
) (*interfaces.CompletionResponse, error) {
	if key == nil {
		return nil, ierr.NewError("idempotency key is required").
			WithHint("Cart completion requires an idempotency key").
			Mark(ierr.ErrValidation)
	}

	if key.IsFinished() {
		s.Logger.Debugw("replaying stored cart completion",
			"cart_id", cartID,
			"idempotency_key", key.IdempotencyKey,
			"response_code", *key.ResponseCode,
		)
		return &interfaces.CompletionResponse{
			ResponseCode: *key.ResponseCode,
			ResponseBody: key.ResponseBody,
		}, nil
	}

	if key.IsLocked() {
		return &interfaces.CompletionResponse{
			ResponseCode: http.StatusConflict,
			ResponseBody: map[string]interface{}{
				"code":    CompletionCodeConflict,
				"message": "Failed to obtain lock on idempotency key",
			},
		}, nil
	}

	now := time.Now().UTC()
	key.LockedAt = &now
	key.UpdatedAt = now
	if err := s.IdempotencyKeyRepo.Update(ctx, key); err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, cartID, cc)
	if err != nil {
		return nil, err
	}

	code := resp.ResponseCode
	key.ResponseCode = &code
	key.ResponseBody = types.JSONMap(resp.ResponseBody)
	key.RecoveryPoint = idempotencykey.RecoveryPointFinished
	key.LockedAt = nil
	key.UpdatedAt = time.Now().UTC()
	if err := s.IdempotencyKeyRepo.Update(ctx, key); err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *cartCompletionStrategy) complete(ctx context.Context, cartID string, cc interfaces.CompletionContext) (*interfaces.CompletionResponse, error) {
	cartService := NewCartService(s.ServiceParams)
	orderService := NewOrderService(s.ServiceParams)

	c, err := cartService.Retrieve(ctx, cartID, true)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return failedCompletion(http.StatusNotFound, CompletionCodeNotFound, "Cart "+cartID+" was not found"), nil
	}
	if c.IsCompleted() {
		return failedCompletion(http.StatusConflict, CompletionCodeCartCompleted, "Cart "+cartID+" has already been completed"), nil
	}
	if len(c.Items) == 0 {
		return failedCompletion(http.StatusBadRequest, CompletionCodeInvalidCart, "Cannot complete a cart without items"), nil
	}

	var orderID string
	// The insert runs in its own savepoint so a unique violation leaves the
	// enclosing transaction usable for recording the response.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		o, err := orderService.CreateFromCart(ctx, c)
		if err != nil {
			return err
		}
		orderID = o.ID
		return s.CartRepo.MarkCompleted(ctx, c.ID, o.CreatedAt)
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) {
			return failedCompletion(http.StatusConflict, CompletionCodeCartCompleted, "Cart "+cartID+" has already been completed"), nil
		}
		return nil, err
	}

	s.Logger.Infow("completed cart",
		"cart_id", cartID,
		"order_id", orderID,
		"ip", cc.IP,
	)

	return &interfaces.CompletionResponse{
		ResponseCode: http.StatusOK,
		ResponseBody: map[string]interface{}{
			"type":     "order",
			"order_id": orderID,
		},
	}, nil
}

func failedCompletion(status int, code, message string) *interfaces.CompletionResponse {
	return &interfaces.CompletionResponse{
		ResponseCode: status,
		ResponseBody: map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
}
