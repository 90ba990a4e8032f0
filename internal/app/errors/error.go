package errors

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Business error codes surfaced to clients alongside the HTTP status.
const (
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeItemInactive        = "ITEM_INACTIVE"
	ErrCodeQuotaExceeded       = "QUOTA_EXCEEDED"
	ErrCodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewBusinessError attaches a machine-readable code to a request-terminal failure.
func NewBusinessError(statusCode int, code, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewForbiddenError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusForbidden, message[0])
	}
	return NewAppError(http.StatusForbidden, "Forbidden")
}

func NewNotFoundError(message string) *AppError {
	return NewBusinessError(http.StatusNotFound, ErrCodeNotFound, message)
}

func NewConflictError(code, message string) *AppError {
	return NewBusinessError(http.StatusConflict, code, message)
}

func NewUnprocessableError(code, message string) *AppError {
	return NewBusinessError(http.StatusUnprocessableEntity, code, message)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

func NewInternalServerError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	return NewAppError(http.StatusInternalServerError, message)
}

// NewStoreUnavailableError wraps a transient store failure that exhausted its retries.
func NewStoreUnavailableError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	return NewBusinessError(http.StatusServiceUnavailable, ErrCodeStoreUnavailable, message)
}

// HasCode reports whether err is an AppError carrying the given business code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
