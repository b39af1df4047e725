package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex ord_01HCSQ308RP7FQGXQ2MQ69K8P7
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_IDEMPOTENCY_KEY    = "ikey"
	UUID_PREFIX_CART               = "cart"
	UUID_PREFIX_CART_ITEM          = "item"
	UUID_PREFIX_ORDER              = "order"
	UUID_PREFIX_PAYMENT_COLLECTION = "paycol"
	UUID_PREFIX_PAYMENT            = "pay"
	UUID_PREFIX_SUBSCRIPTION       = "sub"
	UUID_PREFIX_LAUNDRY_ORDER      = "lord"
	UUID_PREFIX_CUSTOMER           = "cus"
)
