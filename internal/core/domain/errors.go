package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the services wraps one of these,
// handlers map them to HTTP status codes.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInconsistent    = errors.New("inconsistent state")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

// Error is a classed domain error carrying a user-facing message
type Error struct {
	class error
	msg   string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.class }

func newError(class error, msg string) *Error {
	return &Error{class: class, msg: msg}
}

// Invalidf builds an ad-hoc InvalidArgument error
func Invalidf(format string, args ...interface{}) error {
	return newError(ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Inconsistentf builds an Inconsistent error for reconciliation reports
func Inconsistentf(format string, args ...interface{}) error {
	return newError(ErrInconsistent, fmt.Sprintf(format, args...))
}

// Catalog errors
var (
	ErrBookNotFound       = newError(ErrNotFound, "book not found")
	ErrBookHasActiveLoans = newError(ErrConflict, "book has loans that are not returned")
	ErrBookUnavailable    = newError(ErrConflict, "no copies of this book are available")
	ErrBookDiscontinued   = newError(ErrConflict, "book is discontinued")
	ErrInvalidBookStatus  = newError(ErrInvalidArgument, "status must be available, out_of_stock or discontinued")
	ErrAvailableExceeds   = newError(ErrInvalidArgument, "availableQuantity cannot exceed quantity")
	ErrQuantityRequired   = newError(ErrInvalidArgument, "quantity must be at least 1")
	ErrNegativeQuantity   = newError(ErrInvalidArgument, "quantities cannot be negative")
)

// Loan errors
var (
	ErrLoanNotFound        = newError(ErrNotFound, "book loan not found")
	ErrBorrowerNotFound    = newError(ErrNotFound, "borrower not found")
	ErrLoanAlreadyReturned = newError(ErrConflict, "book loan is already returned")
	ErrConcurrentUpdate    = newError(ErrConflict, "record was modified concurrently, retry")
	ErrDueDateRequired     = newError(ErrInvalidArgument, "dueDate is required")
	ErrDueDateInPast       = newError(ErrInvalidArgument, "dueDate cannot be in the past")
	ErrReturnBeforeIssue   = newError(ErrInvalidArgument, "returnDate cannot be before issueDate")
	ErrReturnInFuture      = newError(ErrInvalidArgument, "returnDate cannot be in the future")
	ErrInvalidBorrowerType = newError(ErrInvalidArgument, "borrowerType must be student or teacher")
	ErrInvalidLoanStatus   = newError(ErrInvalidArgument, "status must be borrowed, overdue or returned")
	ErrSchoolRequired      = newError(ErrInvalidArgument, "schoolName is required")
)

// Account errors
var (
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrUserAlreadyExists   = newError(ErrConflict, "username or email already exists")
	ErrInvalidCredentials  = newError(ErrUnauthorized, "invalid username or password")
	ErrUserInactive        = newError(ErrForbidden, "user account is inactive")
	ErrInvalidRole         = newError(ErrInvalidArgument, "role must be ADMIN, LIBRARIAN or STAFF")
	ErrTokenExpired        = newError(ErrUnauthorized, "token expired")
	ErrTokenInvalid        = newError(ErrUnauthorized, "token invalid")
	ErrTokenRevoked        = newError(ErrUnauthorized, "token revoked")
	ErrCannotDeleteSelf    = newError(ErrConflict, "cannot delete your own account")
	ErrCannotChangeOwnRole = newError(ErrConflict, "cannot change your own role")
	ErrOldPasswordWrong    = newError(ErrInvalidArgument, "old password is incorrect")
	ErrWeakPassword        = newError(ErrInvalidArgument, "password must be at least 8 characters")
	ErrCrossTenant         = newError(ErrForbidden, "school does not match your account")
)
