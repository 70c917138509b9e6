package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const uniqueViolation = "23505"

// mapError turns driver errors into application errors. op reads like "get doctor".
func mapError(err error, op, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.Conflict(fmt.Sprintf("%s already exists", resource), pqErr)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// expectOne reports NotFound when an update or delete matched no row
func expectOne(res sql.Result, op, resource string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, fmt.Errorf("%s: no rows", op))
	}
	return nil
}
