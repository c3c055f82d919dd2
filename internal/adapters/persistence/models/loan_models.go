package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Fines travel as JSON numbers so API clients can do arithmetic on them.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// BookLoan represents book_loans table. Rows are hard-deleted.
type BookLoan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SchoolName   string          `gorm:"size:100;not null;index:idx_loans_school_borrower,priority:1" json:"schoolName"`
	BookID       uint            `gorm:"not null;index" json:"bookId"`
	BorrowerType string          `gorm:"size:10;not null;index:idx_loans_school_borrower,priority:2" json:"borrowerType"`
	BorrowerID   uint            `gorm:"not null;index:idx_loans_school_borrower,priority:3" json:"borrowerId"`
	IssueDate    time.Time       `gorm:"not null" json:"issueDate"`
	DueDate      time.Time       `gorm:"not null;index" json:"dueDate"`
	ReturnDate   *time.Time      `gorm:"index" json:"returnDate"`
	Status       string          `gorm:"size:20;not null;default:'borrowed'" json:"status"`
	Fine         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fine"`
	Notes        string          `gorm:"type:text" json:"notes"`
	LibrarianID  uint            `gorm:"not null;default:0" json:"librarianId"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (BookLoan) TableName() string {
	return "book_loans"
}

// IsReturned reports whether the loan reached its terminal state
func (l *BookLoan) IsReturned() bool {
	return l.ReturnDate != nil
}

// BookLoanResponse DTO, denormalized with book and borrower summaries.
// StudentID/TeacherID mirror BorrowerID for clients that key on them.
type BookLoanResponse struct {
	ID           uint             `json:"id"`
	SchoolName   string           `json:"schoolName"`
	BookID       uint             `json:"bookId"`
	BorrowerType string           `json:"borrowerType"`
	BorrowerID   uint             `json:"borrowerId"`
	StudentID    *uint            `json:"studentId,omitempty"`
	TeacherID    *uint            `json:"teacherId,omitempty"`
	IssueDate    time.Time        `json:"issueDate"`
	DueDate      time.Time        `json:"dueDate"`
	ReturnDate   *time.Time       `json:"returnDate"`
	Status       string           `json:"status"`
	DaysOverdue  int              `json:"daysOverdue"`
	Fine         decimal.Decimal  `json:"fine"`
	Notes        string           `json:"notes"`
	LibrarianID  uint             `json:"librarianId"`
	Book         *BookSummary     `json:"book"`
	Student      *BorrowerSummary `json:"student,omitempty"`
	Teacher      *BorrowerSummary `json:"teacher,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ToResponse builds the DTO with the read-time status and fine
func (l *BookLoan) ToResponse(status string, daysOverdue int, fine decimal.Decimal) *BookLoanResponse {
	resp := &BookLoanResponse{
		ID:           l.ID,
		SchoolName:   l.SchoolName,
		BookID:       l.BookID,
		BorrowerType: l.BorrowerType,
		BorrowerID:   l.BorrowerID,
		IssueDate:    l.IssueDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       status,
		DaysOverdue:  daysOverdue,
		Fine:         fine,
		Notes:        l.Notes,
		LibrarianID:  l.LibrarianID,
		CreatedAt:    l.CreatedAt,
	}

	id := l.BorrowerID
	switch l.BorrowerType {
	case "student":
		resp.StudentID = &id
	case "teacher":
		resp.TeacherID = &id
	}

	return resp
}

// ReconciliationRun represents reconciliation_runs table (repair job audit)
type ReconciliationRun struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SchoolName    string         `gorm:"size:100;not null;index" json:"schoolName"`
	Kind          string         `gorm:"size:30;not null" json:"kind"`
	AffectedCount int            `gorm:"not null;default:0" json:"affectedCount"`
	Details       datatypes.JSON `json:"details"`
	TriggeredBy   string         `gorm:"size:50" json:"triggeredBy"`
	Error         string         `gorm:"type:text" json:"error,omitempty"`
	StartedAt     time.Time      `gorm:"not null" json:"startedAt"`
	FinishedAt    time.Time      `gorm:"not null" json:"finishedAt"`
}

func (ReconciliationRun) TableName() string {
	return "reconciliation_runs"
}
