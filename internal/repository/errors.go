package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civictrack/civictrackd/internal/apperror"
)

// postgresUniqueViolation is the SQLSTATE pgx reports for a unique
// constraint violation.
const postgresUniqueViolation = "23505"

// wrapDBError converts a raw pgx/pgconn error into the apperror.Error the
// rest of the module expects, the way the teacher's wrapDBError folds
// sql.ErrNoRows into its own ErrNotFound. op names the failing query for
// the wrapped message.
func wrapDBError(op string, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation {
		return apperror.Conflict("%s already exists", resource)
	}
	return apperror.Internal(fmt.Errorf("%s: %w", op, err))
}
