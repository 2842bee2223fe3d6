package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// ErrorCode is a stable, client-facing error identifier.
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken    ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken    ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidPassword ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserExists      ErrorCode = "USER_EXISTS"
	ErrCodeAccountPending  ErrorCode = "ACCOUNT_PENDING"
	ErrCodeAccountRejected ErrorCode = "ACCOUNT_REJECTED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"

	// Lookup errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeInvalidAmount ErrorCode = "INVALID_AMOUNT"

	// Business errors
	ErrCodeInsufficientFund     ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeDateConflict         ErrorCode = "DATE_CONFLICT"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeAlreadyReviewed      ErrorCode = "ALREADY_REVIEWED"
	ErrCodeApplicationLimit     ErrorCode = "APPLICATION_LIMIT"
	ErrCodeOwnApartment         ErrorCode = "OWN_APARTMENT"
	ErrCodeApartmentUnavailable ErrorCode = "APARTMENT_UNAVAILABLE"
	ErrCodeReviewNotAllowed     ErrorCode = "REVIEW_NOT_ALLOWED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeInvalidToken:    http.StatusUnauthorized,
	ErrCodeMissingToken:    http.StatusUnauthorized,
	ErrCodeInvalidPassword: http.StatusUnauthorized,
	ErrCodeAccountPending:  http.StatusForbidden,
	ErrCodeAccountRejected: http.StatusForbidden,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// AppError is the error type returned by services.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status maps the code to an HTTP status. Business and validation codes
// not listed explicitly are 422.
func (e *AppError) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusUnprocessableEntity
}

// WithDetails attaches structured data to the error body.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewAppError creates an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(what string) *AppError {
	return NewAppError(ErrCodeNotFound, what+" not found", nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, nil)
}

func Validation(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, nil)
}

func InvalidTransition(message string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, message, nil)
}

// InsufficientFunds reports the shortfall in SPY.
func InsufficientFunds(required, available int64) *AppError {
	return NewAppError(ErrCodeInsufficientFund, "insufficient wallet balance", nil).
		WithDetails(map[string]any{"required": required, "available": available})
}

// Internal wraps an unexpected failure. The message is never shown to clients.
func Internal(err error) *AppError {
	return NewAppError(ErrCodeInternal, "internal server error", err)
}

// FromDB converts gorm lookups into a not-found error for what, and anything
// else into an internal error.
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(what)
	}
	if IsAppError(err) {
		return err
	}
	return Internal(err)
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err, if any.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
