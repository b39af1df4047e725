package service

import (
	"context"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/laundryorder"
	"github.com/laundrybox/reconciler/internal/domain/subscription"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type LaundryOrderService = interfaces.LaundryOrderService

type laundryOrderService struct {
	ServiceParams
}

func NewLaundryOrderService(params ServiceParams) LaundryOrderService {
	return &laundryOrderService{
		ServiceParams: params,
	}
}

// Schedule places the next collection for the subscription on the next valid
// business day after now, keeping one collection per week.
func (s *laundryOrderService) Schedule(
	ctx context.Context,
	sub *subscription.Subscription,
	shippingAddressID *string,
	now time.Time,
) (*laundryorder.LaundryOrder, error) {
	var lastCollection *time.Time
	latest, err := s.LaundryOrderRepo.GetLatestBySubscriptionID(ctx, sub.ID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if latest != nil {
		lastCollection = &latest.PlacedAt
	}

	o := &laundryorder.LaundryOrder{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LAUNDRY_ORDER),
		SubscriptionID:    sub.ID,
		CustomerID:        sub.CustomerID,
		ShippingAddressID: shippingAddressID,
		Status:            types.LaundryOrderStatusPending,
		PlacedAt:          types.NextValidDate(now, lastCollection),
		CreatedAt:         now,
	}

	if err := s.LaundryOrderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("scheduled laundry order",
		"laundry_order_id", o.ID,
		"subscription_id", sub.ID,
		"placed_at", o.PlacedAt,
	)
	return o, nil
}
