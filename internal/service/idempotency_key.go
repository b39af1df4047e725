package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/idempotencykey"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type IdempotencyKeyService = interfaces.IdempotencyKeyService

type idempotencyKeyService struct {
	ServiceParams
}

func NewIdempotencyKeyService(params ServiceParams) IdempotencyKeyService {
	return &idempotencyKeyService{
		ServiceParams: params,
	}
}

func (s *idempotencyKeyService) Retrieve(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error) {
	k, err := s.IdempotencyKeyRepo.Get(ctx, requestPath, key)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return k, nil
}

func (s *idempotencyKeyService) Create(ctx context.Context, requestPath, key string) (*idempotencykey.IdempotencyKey, error) {
	if requestPath == "" || key == "" {
		return nil, ierr.NewError("request path and idempotency key are required").
			WithHint("Provide both a request path and an idempotency key").
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	k := &idempotencykey.IdempotencyKey{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_IDEMPOTENCY_KEY),
		RequestPath:    requestPath,
		IdempotencyKey: key,
		RecoveryPoint:  idempotencykey.RecoveryPointStarted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.IdempotencyKeyRepo.Create(ctx, k); err != nil {
		return nil, err
	}

	s.Logger.Debugw("created idempotency key",
		"request_path", requestPath,
		"idempotency_key", key,
	)
	return k, nil
}
