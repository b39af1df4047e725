package idempotencykey

import (
	"time"

	"github.com/laundrybox/reconciler/internal/types"
)

// Recovery points a cart completion moves through while holding a key
const (
	RecoveryPointStarted  = "started"
	RecoveryPointFinished = "finished"
)

// IdempotencyKey records that a logical operation, identified by
// (request_path, idempotency_key), has been started and what it answered.
// At most one row exists per pair.
type IdempotencyKey struct {
	ID             string `db:"id" json:"id"`
	RequestPath    string `db:"request_path" json:"request_path"`
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	// RecoveryPoint is the last completed step of the guarded operation
	RecoveryPoint string `db:"recovery_point" json:"recovery_point"`
	// LockedAt is set while a run is in flight
	LockedAt *time.Time `db:"locked_at" json:"locked_at,omitempty"`
	// ResponseCode and ResponseBody hold the stored outcome once finished
	ResponseCode *int          `db:"response_code" json:"response_code,omitempty"`
	ResponseBody types.JSONMap `db:"response_body" json:"response_body,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// IsFinished reports whether the guarded operation already produced a response
func (k *IdempotencyKey) IsFinished() bool {
	return k.ResponseCode != nil
}

// IsLocked reports whether another run currently holds the key
func (k *IdempotencyKey) IsLocked() bool {
	return k.LockedAt != nil
}
