package webhook

import (
	"testing"

	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestBuildWebhookErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "serialization failure",
			err: ierr.WithError(&pq.Error{Code: "40001", Message: "could not serialize access"}).
				Mark(ierr.ErrDatabase),
			want: "Stripe webhook payment_intent.succeeded handle failed. This can happen when this webhook is triggered during a cart completion and can be ignored. This event should be retried automatically.\npq: could not serialize access",
		},
		{
			name: "deadlock",
			err:  &pq.Error{Code: "40P01", Message: "deadlock detected", Detail: "Process 1 waits for ShareLock"},
			want: "Stripe webhook payment_intent.succeeded handle failed. This can happen when this webhook is triggered during a cart completion and can be ignored. This event should be retried automatically.\nProcess 1 waits for ShareLock",
		},
		{
			name: "business conflict",
			err:  ierr.NewError("Failed to obtain lock on idempotency key").Mark(ierr.ErrConflict),
			want: "Stripe webhook payment_intent.succeeded handle failed.\nFailed to obtain lock on idempotency key",
		},
		{
			name: "postgres detail wins over message",
			err: ierr.WithError(&pq.Error{Code: "23503", Message: "insert violates foreign key", Detail: "Key (cart_id)=(cart_1) is not present"}).
				Mark(ierr.ErrDatabase),
			want: "Stripe webhook payment_intent.succeeded handling failed\nKey (cart_id)=(cart_1) is not present",
		},
		{
			name: "anything else",
			err:  ierr.NewError("boom").Mark(ierr.ErrSystem),
			want: "Stripe webhook payment_intent.succeeded handling failed\nboom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildWebhookErrorMessage("payment_intent.succeeded", tt.err))
		})
	}
}
