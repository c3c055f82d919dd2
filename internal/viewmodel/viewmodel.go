// Package viewmodel holds the screen state of the librarian dashboard: the
// loans and books a screen has fetched, its counters, and the notice shown
// after a command. Commands go through the HTTP client; a failed command
// leaves the fetched state untouched.
package viewmodel

import (
	"context"
	"errors"
	"time"

	"libraryhub/internal/adapters/client"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/services"
)

// NoIssuesFound is the notice of a repair run that changed nothing
const NoIssuesFound = "No issues found"

// LoanAPI is the part of the HTTP client a LoanPanel uses
type LoanAPI interface {
	ListLoans(ctx context.Context, schoolName string, q client.LoanQuery) ([]*models.BookLoanResponse, error)
	Issue(ctx context.Context, req client.IssueRequest) (*models.BookLoanResponse, error)
	Return(ctx context.Context, id uint, returnDate *time.Time) (*services.ReturnResult, error)
	DeleteLoan(ctx context.Context, id uint) (*services.DeleteLoanResult, error)
	CleanupOrphanedLoans(ctx context.Context, schoolName string) (*services.CleanupResult, error)
	RestoreAvailability(ctx context.Context, schoolName string) (*services.RestoreResult, error)
}

// BookAPI is the part of the HTTP client a BookPanel uses
type BookAPI interface {
	ListBooks(ctx context.Context, schoolName string, q client.BookQuery) (*services.BookPage, error)
	CreateBook(ctx context.Context, input services.CreateBookInput) (*models.BookResponse, error)
	UpdateBook(ctx context.Context, id uint, input services.UpdateBookInput) (*models.BookResponse, error)
	DeleteBook(ctx context.Context, id uint) error
}

var (
	_ LoanAPI = (*client.Client)(nil)
	_ BookAPI = (*client.Client)(nil)
)

// NoticeLevel tells how a notice should be rendered
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a dismissible message
type Notice struct {
	Level   NoticeLevel
	Message string
}

// errorNotice shows the server message verbatim. Transport failures keep
// their wrapped cause so the user sees what went wrong.
func errorNotice(err error) *Notice {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return &Notice{Level: NoticeError, Message: apiErr.Error()}
	}
	return &Notice{Level: NoticeError, Message: err.Error()}
}
