package viewmodel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"libraryhub/internal/adapters/client"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LoanCounters are the totals shown above a loan table
type LoanCounters struct {
	Total            int
	Borrowed         int
	Overdue          int
	Returned         int
	Fines            decimal.Decimal
	OutstandingFines decimal.Decimal
}

// LoanPanel is the loan table of one school, optionally narrowed to one
// borrower type
type LoanPanel struct {
	api          LoanAPI
	schoolName   string
	borrowerType string

	mu     sync.RWMutex
	loans  []*models.BookLoanResponse
	notice *Notice
}

// NewLoanPanel creates a panel. An empty borrowerType shows every loan.
func NewLoanPanel(api LoanAPI, schoolName, borrowerType string) *LoanPanel {
	return &LoanPanel{
		api:          api,
		schoolName:   schoolName,
		borrowerType: borrowerType,
	}
}

// Refresh replaces the local list with the server's
func (p *LoanPanel) Refresh(ctx context.Context) error {
	loans, err := p.api.ListLoans(ctx, p.schoolName, client.LoanQuery{BorrowerType: p.borrowerType})
	if err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	p.loans = loans
	p.mu.Unlock()
	return nil
}

// Loans returns the local loans with the given status, or all of them for ""
func (p *LoanPanel) Loans(status string) []*models.BookLoanResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*models.BookLoanResponse, 0, len(p.loans))
	for _, l := range p.loans {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// Counters aggregates the local list
func (p *LoanPanel) Counters() LoanCounters {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c := LoanCounters{Total: len(p.loans)}
	for _, l := range p.loans {
		c.Fines = c.Fines.Add(l.Fine)
		switch domain.LoanStatus(l.Status) {
		case domain.LoanBorrowed:
			c.Borrowed++
		case domain.LoanOverdue:
			c.Overdue++
		case domain.LoanReturned:
			c.Returned++
		}
		if l.ReturnDate == nil {
			c.OutstandingFines = c.OutstandingFines.Add(l.Fine)
		}
	}
	return c
}

// Issue lends a book and puts the new loan at the top of the list
func (p *LoanPanel) Issue(ctx context.Context, req client.IssueRequest) (*models.BookLoanResponse, error) {
	if req.SchoolName == "" {
		req.SchoolName = p.schoolName
	}

	loan, err := p.api.Issue(ctx, req)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	p.mu.Lock()
	if p.borrowerType == "" || p.borrowerType == loan.BorrowerType {
		p.loans = append([]*models.BookLoanResponse{loan}, p.loans...)
	}
	p.mu.Unlock()
	return loan, nil
}

// Return closes a loan and swaps in the returned record
func (p *LoanPanel) Return(ctx context.Context, id uint, returnDate *time.Time) (*models.BookLoanResponse, error) {
	result, err := p.api.Return(ctx, id, returnDate)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	p.mu.Lock()
	for i, l := range p.loans {
		if l.ID == id {
			p.loans[i] = result.Loan
			break
		}
	}
	p.mu.Unlock()
	return result.Loan, nil
}

// Delete removes a loan record. Deleting an open loan that the server did
// not give back raises a warning pointing at the availability repair.
func (p *LoanPanel) Delete(ctx context.Context, id uint) error {
	result, err := p.api.DeleteLoan(ctx, id)
	if err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.loans = without(p.loans, map[uint]bool{id: true})
	if result.WasActive && !result.AvailabilityRestored {
		p.notice = &Notice{
			Level:   NoticeWarning,
			Message: "Book loan deleted. The copy was not put back on the shelf; run restore availability to fix the count.",
		}
	}
	return nil
}

// Cleanup removes orphaned loans on the server and drops them locally
func (p *LoanPanel) Cleanup(ctx context.Context) (int, error) {
	result, err := p.api.CleanupOrphanedLoans(ctx, p.schoolName)
	if err != nil {
		p.fail(err)
		return 0, err
	}

	removed := make(map[uint]bool, len(result.Details))
	for _, d := range result.Details {
		if d.Error == "" {
			removed[d.LoanID] = true
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.loans = without(p.loans, removed)
	p.notice = countNotice(result.CleanedCount, "Cleaned up %d orphaned book loan(s)")
	return result.CleanedCount, nil
}

// RestoreAvailability recounts the school's books. Loans are unaffected.
func (p *LoanPanel) RestoreAvailability(ctx context.Context) (int, error) {
	result, err := p.api.RestoreAvailability(ctx, p.schoolName)
	if err != nil {
		p.fail(err)
		return 0, err
	}

	p.mu.Lock()
	p.notice = countNotice(result.RestoredCount, "Restored availability of %d book(s)")
	p.mu.Unlock()
	return result.RestoredCount, nil
}

// Notice returns the pending notice, nil when there is none
func (p *LoanPanel) Notice() *Notice {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.notice
}

// DismissNotice clears the pending notice
func (p *LoanPanel) DismissNotice() {
	p.mu.Lock()
	p.notice = nil
	p.mu.Unlock()
}

func (p *LoanPanel) fail(err error) {
	p.mu.Lock()
	p.notice = errorNotice(err)
	p.mu.Unlock()
}

func without(loans []*models.BookLoanResponse, ids map[uint]bool) []*models.BookLoanResponse {
	if len(ids) == 0 {
		return loans
	}
	out := make([]*models.BookLoanResponse, 0, len(loans))
	for _, l := range loans {
		if !ids[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

func countNotice(n int, format string) *Notice {
	if n == 0 {
		return &Notice{Level: NoticeInfo, Message: NoIssuesFound}
	}
	return &Notice{Level: NoticeInfo, Message: fmt.Sprintf(format, n)}
}
