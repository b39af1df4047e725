package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	ierr "github.com/laundrybox/reconciler/internal/errors"
)

// mapError converts driver errors into the application's error marks while
// keeping the original error in the chain.
func mapError(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	if ierr.IsUniqueViolation(err) {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithHintf("%s query failed", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
