package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/core/apperror"
)

// PostgreSQL error codes mapped to application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError converts driver errors into apperror values. Unknown errors are
// wrapped with op.
func MapError(err error, op, entity string, entityID any) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, entityID)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflict(entity+" already exists").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewInUse(entity, entityID, pgErr.ConstraintName).WithCause(err)
		case pgCheckViolation:
			return apperror.NewValidation(entity + " violates " + pgErr.ConstraintName).WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
