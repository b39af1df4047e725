package webhook

import (
	"fmt"

	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/lib/pq"
)

// BuildWebhookErrorMessage renders the warning logged when handling an event
// fails. Serialization failures and business conflicts are expected to clear
// on redelivery and say so.
func BuildWebhookErrorMessage(eventType string, err error) string {
	detail := errorDetail(err)

	switch {
	case ierr.IsConflict(err):
		return fmt.Sprintf("Stripe webhook %s handle failed.\n%s", eventType, detail)
	case ierr.IsSerializationFailure(err):
		return fmt.Sprintf("Stripe webhook %s handle failed. This can happen when this webhook is triggered during a cart completion and can be ignored. This event should be retried automatically.\n%s", eventType, detail)
	default:
		return fmt.Sprintf("Stripe webhook %s handling failed\n%s", eventType, detail)
	}
}

// errorDetail prefers the postgres detail field over the error text
func errorDetail(err error) string {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && pqErr.Detail != "" {
		return pqErr.Detail
	}
	return err.Error()
}
