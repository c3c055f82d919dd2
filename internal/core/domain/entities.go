package domain

import (
	"strings"
	"time"
)

// Role represents staff role inside a school
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLibrarian Role = "LIBRARIAN"
	RoleStaff     Role = "STAFF"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleLibrarian, RoleStaff:
		return r, nil
	}
	return "", ErrInvalidRole
}

// BorrowerType tags which registry a loan's borrowerId points into
type BorrowerType string

const (
	BorrowerStudent BorrowerType = "student"
	BorrowerTeacher BorrowerType = "teacher"
)

// ParseBorrowerType accepts "student"/"teacher" in any case
func ParseBorrowerType(s string) (BorrowerType, error) {
	switch t := BorrowerType(strings.ToLower(strings.TrimSpace(s))); t {
	case BorrowerStudent, BorrowerTeacher:
		return t, nil
	}
	return "", ErrInvalidBorrowerType
}

// LoanStatus is the display state of a BookLoan
type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// ParseLoanStatus validates a status filter
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch st := LoanStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case LoanBorrowed, LoanOverdue, LoanReturned:
		return st, nil
	}
	return "", ErrInvalidLoanStatus
}

// Active reports whether the loan still holds a copy
func (s LoanStatus) Active() bool {
	return s == LoanBorrowed || s == LoanOverdue
}

// BookStatus is the catalog state of a Book
type BookStatus string

const (
	BookAvailable    BookStatus = "available"
	BookOutOfStock   BookStatus = "out_of_stock"
	BookDiscontinued BookStatus = "discontinued"
)

// ParseBookStatus validates a book status
func ParseBookStatus(s string) (BookStatus, error) {
	switch st := BookStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case BookAvailable, BookOutOfStock, BookDiscontinued:
		return st, nil
	}
	return "", ErrInvalidBookStatus
}

// ReconciliationKind names a repair job
type ReconciliationKind string

const (
	ReconcileCleanup ReconciliationKind = "cleanup"
	ReconcileRestore ReconciliationKind = "restore_availability"
)

// Orphan reasons reported by cleanup
const (
	OrphanBookMissing     = "book_missing"
	OrphanBorrowerMissing = "borrower_missing"
	OrphanBothMissing     = "book_and_borrower_missing"
)

// OrphanReason describes why a loan no longer resolves, "" when it does
func OrphanReason(bookExists, borrowerExists bool) string {
	switch {
	case !bookExists && !borrowerExists:
		return OrphanBothMissing
	case !bookExists:
		return OrphanBookMissing
	case !borrowerExists:
		return OrphanBorrowerMissing
	}
	return ""
}

// Clock returns the current instant; services take one so tests can pin time
type Clock func() time.Time

// SystemClock is the wall clock in UTC, second precision
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
