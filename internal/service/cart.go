package service

import (
	"context"

	"github.com/laundrybox/reconciler/internal/domain/cart"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
)

type CartService = interfaces.CartService

type cartService struct {
	ServiceParams
}

func NewCartService(params ServiceParams) CartService {
	return &cartService{
		ServiceParams: params,
	}
}

// Retrieve returns the cart, optionally with its line items, or nil if it does not exist
func (s *cartService) Retrieve(ctx context.Context, id string, withItems bool) (*cart.Cart, error) {
	c, err := s.CartRepo.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if withItems {
		items, err := s.CartRepo.ListItems(ctx, id)
		if err != nil {
			return nil, err
		}
		c.Items = items
	}
	return c, nil
}
