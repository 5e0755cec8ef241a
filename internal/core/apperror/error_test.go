package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatuses(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewValidation("bad"), http.StatusBadRequest},
		{NewUnauthorized("who"), http.StatusUnauthorized},
		{NewForbidden("no"), http.StatusForbidden},
		{NewUnconfigured("nv9"), http.StatusForbidden},
		{NewNotFound("product", "SP404"), http.StatusNotFound},
		{NewInsufficientStock("K1", "SP001", 5, 2), http.StatusUnprocessableEntity},
		{NewOutOfStock("K1", "SP001", -1), http.StatusUnprocessableEntity},
		{NewInvalidTransfer("same warehouse"), http.StatusUnprocessableEntity},
		{NewDuplicate("product", "id", "SP001"), http.StatusConflict},
		{NewIntegrityViolation("product", "SP001"), http.StatusConflict},
		{NewInternal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("K2", "SP003", 12, 4)
	assert.Equal(t, int64(8), err.Details["shortfall"])
	assert.Equal(t, int64(4), err.Details["available"])
	assert.Equal(t, "K2", err.Details["warehouse_id"])
}

func TestWrappedErrorsAreClassified(t *testing.T) {
	cause := errors.New("unique violation")
	err := fmt.Errorf("create product: %w", NewDuplicate("product", "id", "SP001").WithCause(cause))

	assert.True(t, Is(err, CodeDuplicate))
	assert.False(t, Is(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "SP001", appErr.Details["value"])

	assert.False(t, IsAppError(cause))
}
