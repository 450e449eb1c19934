package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their template.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrPackageNotFound    = New("PACKAGE_NOT_FOUND", http.StatusNotFound, "package not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidAmount      = New("INVALID_AMOUNT", http.StatusBadRequest, "amount must be positive")
	ErrInvalidDateRange   = New("INVALID_DATE_RANGE", http.StatusBadRequest, "start date must not be after end date")
	ErrInvalidDuration    = New("INVALID_DURATION", http.StatusBadRequest, "duration must be between 1 and 300 minutes")
	ErrInvalidCapacity    = New("INVALID_CAPACITY", http.StatusBadRequest, "capacity must not be negative")
	ErrCapacityExceeded   = New("CAPACITY_EXCEEDED", http.StatusConflict, "class is at capacity")
	ErrTrainerConflict    = New("TRAINER_CONFLICT", http.StatusConflict, "trainer already teaches at that time")
	ErrOutOfStock         = New("OUT_OF_STOCK", http.StatusConflict, "not enough items in stock")
	ErrNoSuchLoan         = New("NO_SUCH_LOAN", http.StatusNotFound, "no outstanding loan for item")
	ErrNegativeBalance    = New("NEGATIVE_BALANCE", http.StatusPreconditionFailed, "member has an outstanding balance")
	ErrPersistence        = New("PERSISTENCE_FAILURE", http.StatusServiceUnavailable, "storage unavailable")
	ErrUnavailable        = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Persistence wraps a storage-layer failure, including timeouts, as PERSISTENCE_FAILURE.
func Persistence(err error, message string) *Error {
	return Wrap(err, ErrPersistence.Code, ErrPersistence.Status, message)
}
