package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"stockledger/internal/core/apperror"
)

// PostgreSQL error codes the ledger maps to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// NonNegativeConstraint is the CHECK that keeps stock_levels.quantity >= 0.
const NonNegativeConstraint = "stock_levels_quantity_non_negative"

// MapError converts constraint violations into AppErrors and returns any other error unchanged.
func MapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, "id", toString(id)).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewIntegrityViolation(entity, id).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		if pgErr.ConstraintName == NonNegativeConstraint {
			return apperror.NewOutOfStock("", "", 0).WithDetail("entity", entity).WithCause(err)
		}
		return apperror.NewValidation("value rejected by constraint").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
