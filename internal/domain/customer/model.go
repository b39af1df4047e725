package customer

import (
	"fmt"
	"strings"
	"time"

	"github.com/laundrybox/reconciler/internal/types"
)

// Customer represents a customer in the system
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `db:"id" json:"id"`

	// Email is the email of the customer
	Email string `db:"email" json:"email"`

	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`

	// Metadata holds the stripe customer id and profile defaults such as the
	// default shipping address
	Metadata types.Metadata `db:"metadata" json:"metadata"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.FirstName, c.LastName))
}

// StripeID returns the linked stripe customer id, if any
func (c *Customer) StripeID() string {
	return c.Metadata[types.MetadataKeyStripeID]
}

// DefaultShippingAddressID returns the profile's default shipping address, if any
func (c *Customer) DefaultShippingAddressID() *string {
	id, ok := c.Metadata[types.MetadataKeyDefaultShippingAddressID]
	if !ok || id == "" {
		return nil
	}
	return &id
}
