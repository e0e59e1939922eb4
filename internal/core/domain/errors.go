package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Billing validation errors. Returned to the caller for direct user-facing
// display; never retried automatically.
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrMissingDescription  = errors.New("description is required")
	ErrMissingDueDate      = errors.New("due date is required")
	ErrInvalidDateFormat   = errors.New("invalid due date, use YYYY-MM-DD")
	ErrNoMembersSelected   = errors.New("no members selected")
	ErrNoActiveMonths      = errors.New("fee settings inactive or no active months configured")
	ErrEmptyMemberList     = errors.New("member list is empty")
	ErrInvalidActiveMonths = errors.New("active months must be unique values between 1 and 12")
)

// StorageError wraps a failure from the underlying store. Callers may retry
// idempotent operations after one; validation errors above never become
// StorageErrors.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a storage failure during op.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
