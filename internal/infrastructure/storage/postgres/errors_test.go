package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "import_transactions_pkey"}, apperror.CodeDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperror.CodeIntegrityViolation},
		{"non negative", &pgconn.PgError{Code: "23514", ConstraintName: NonNegativeConstraint}, apperror.CodeOutOfStock},
		{"other check", &pgconn.PgError{Code: "23514", ConstraintName: "import_transactions_quantity_check"}, apperror.CodeValidation},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), apperror.CodeDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err, "import", "N001")
			require.Error(t, mapped)
			assert.True(t, apperror.Is(mapped, tt.code), "got %v", mapped)

			var pgErr *pgconn.PgError
			assert.True(t, errors.As(mapped, &pgErr), "cause must be kept")
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil, "x", ""))

	plain := errors.New("connection reset")
	assert.Same(t, plain, MapError(plain, "x", ""))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), MapError(other, "x", ""))
}
