// Package apperror provides the typed errors of the ledger.
// Services return *AppError for every rule violation so the API can render them uniformly.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInternal   = "INTERNAL_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"

	// Ledger rules
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOutOfStock        = "OUT_OF_STOCK"
	CodeInvalidTransfer   = "INVALID_TRANSFER"

	// Access
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeUnconfigured = "UNCONFIGURED"

	// Store constraints
	CodeDuplicate          = "DUPLICATE_ENTRY"
	CodeIntegrityViolation = "INTEGRITY_VIOLATION"
)

var statusByCode = map[string]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeValidation:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeInsufficientStock:  http.StatusUnprocessableEntity,
	CodeOutOfStock:         http.StatusUnprocessableEntity,
	CodeInvalidTransfer:    http.StatusUnprocessableEntity,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeUnconfigured:       http.StatusForbidden,
	CodeDuplicate:          http.StatusConflict,
	CodeIntegrityViolation: http.StatusConflict,
}

// AppError is a classified error with client-safe details.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is derived from Code.
	HTTPStatus int `json:"-"`

	// Err is the cause. It is logged, never rendered.
	Err error `json:"-"`
}

func newError(code, message string, details map[string]any) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail sets one detail entry.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewValidation reports malformed input.
func NewValidation(message string) *AppError {
	return newError(CodeValidation, message, nil)
}

// NewNotFound reports a missing entity.
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, fmt.Sprintf("%s not found", entity),
		map[string]any{"entity": entity, "id": id})
}

// NewInsufficientStock is returned when a movement asks for more than the warehouse holds.
// No mutation has happened when this error is returned.
func NewInsufficientStock(warehouseID, productID string, requested, available int64) *AppError {
	return newError(CodeInsufficientStock,
		fmt.Sprintf("warehouse %s holds %d of %s, %d requested", warehouseID, available, productID, requested),
		map[string]any{
			"warehouse_id": warehouseID,
			"product_id":   productID,
			"requested":    requested,
			"available":    available,
			"shortfall":    requested - available,
		})
}

// NewOutOfStock is the store-level rejection of a balance that would become negative.
func NewOutOfStock(warehouseID, productID string, quantity int64) *AppError {
	return newError(CodeOutOfStock, "stock quantity cannot become negative",
		map[string]any{
			"warehouse_id": warehouseID,
			"product_id":   productID,
			"quantity":     quantity,
		})
}

// NewInvalidTransfer reports a malformed transfer.
func NewInvalidTransfer(message string) *AppError {
	return newError(CodeInvalidTransfer, message, nil)
}

// NewInternal wraps an unexpected failure. The message never reveals err.
func NewInternal(err error) *AppError {
	return newError(CodeInternal, "Internal server error", nil).WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message, nil)
}

func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, message, nil)
}

// NewUnconfigured is returned for a staff account that has no bound warehouse.
func NewUnconfigured(username string) *AppError {
	return newError(CodeUnconfigured, "account is not bound to a warehouse",
		map[string]any{"username": username})
}

// NewDuplicate reports a unique key collision.
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, fmt.Sprintf("%s with this %s already exists", entity, field),
		map[string]any{"entity": entity, "field": field, "value": value})
}

// NewIntegrityViolation is returned when a write or delete would break a reference.
func NewIntegrityViolation(entity string, id any) *AppError {
	return newError(CodeIntegrityViolation,
		fmt.Sprintf("%s is referenced by other records or references a missing record", entity),
		map[string]any{"entity": entity, "id": id})
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError extracts the first AppError in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}
