package service

import (
	"context"

	"github.com/laundrybox/reconciler/internal/cache"
	"github.com/laundrybox/reconciler/internal/domain/customer"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/interfaces"
	"github.com/laundrybox/reconciler/internal/types"
)

type CustomerService = interfaces.CustomerService

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) Retrieve(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetDefaultShippingAddressID resolves the customer's default shipping address
// from profile metadata. Results are cached per customer for
// cache.ExpirationCustomerShippingAddress and dropped on every metadata update.
func (s *customerService) GetDefaultShippingAddressID(ctx context.Context, customerID string) (*string, error) {
	key := cache.GenerateKey(cache.PrefixCustomerShippingAddress, customerID)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, key); ok {
			if id, ok := v.(string); ok {
				if id == "" {
					return nil, nil
				}
				return &id, nil
			}
		}
	}

	c, err := s.Retrieve(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		s.Logger.Warnw("customer not found while resolving shipping address",
			"customer_id", customerID,
		)
		return nil, nil
	}

	addressID := c.DefaultShippingAddressID()
	if s.Cache != nil {
		cached := ""
		if addressID != nil {
			cached = *addressID
		}
		s.Cache.Set(ctx, key, cached, cache.ExpirationCustomerShippingAddress)
	}
	return addressID, nil
}

// LinkStripeCustomer records the gateway customer id in the customer's metadata
func (s *customerService) LinkStripeCustomer(ctx context.Context, customerID, stripeCustomerID string) error {
	return s.updateMetadata(ctx, customerID, map[string]string{
		types.MetadataKeyStripeID: stripeCustomerID,
	})
}

// updateMetadata merges values into the customer's metadata and drops the
// cached entries derived from it
func (s *customerService) updateMetadata(ctx context.Context, customerID string, values map[string]string) error {
	c, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return err
	}

	metadata := types.Metadata{}
	for k, v := range c.Metadata {
		metadata[k] = v
	}
	for k, v := range values {
		metadata[k] = v
	}

	if err := s.CustomerRepo.UpdateMetadata(ctx, customerID, metadata); err != nil {
		return err
	}

	if s.Cache != nil {
		s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixCustomerShippingAddress, customerID))
	}
	return nil
}
