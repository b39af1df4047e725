package errors

import (
	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the application reacts to.
const (
	PgCodeSerializationFailure = "40001"
	PgCodeDeadlockDetected     = "40P01"
	PgCodeUniqueViolation      = "23505"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsSerializationFailure reports whether err (or anything it wraps) is a
// write-write conflict reported by postgres. Deadlocks are treated the same
// way since redelivery resolves both.
func IsSerializationFailure(err error) bool {
	switch pgCode(err) {
	case PgCodeSerializationFailure, PgCodeDeadlockDetected:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == PgCodeUniqueViolation
}
