package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CirculationService couples book availability to loan existence. It is the
// only writer of availableQuantity besides direct catalog edits.
type CirculationService struct {
	db           *gorm.DB
	bookRepo     *repositories.BookRepository
	loanRepo     *repositories.LoanRepository
	borrowerRepo repositories.BorrowerRepository
	runRepo      *repositories.ReconciliationRepository
	borrowers    *BorrowerService
	cfg          *config.Config
	now          domain.Clock
}

// NewCirculationService creates a new circulation service
func NewCirculationService(
	db *gorm.DB,
	bookRepo *repositories.BookRepository,
	loanRepo *repositories.LoanRepository,
	borrowerRepo repositories.BorrowerRepository,
	runRepo *repositories.ReconciliationRepository,
	cfg *config.Config,
) *CirculationService {
	return &CirculationService{
		db:           db,
		bookRepo:     bookRepo,
		loanRepo:     loanRepo,
		borrowerRepo: borrowerRepo,
		runRepo:      runRepo,
		borrowers:    NewBorrowerService(borrowerRepo),
		cfg:          cfg,
		now:          domain.SystemClock,
	}
}

// WithClock replaces the wall clock
func (s *CirculationService) WithClock(clock domain.Clock) *CirculationService {
	s.now = clock
	return s
}

// IssueInput represents issue input. BorrowerType+BorrowerID is the only
// borrower shape the service accepts.
type IssueInput struct {
	SchoolName   string
	BookID       uint
	BorrowerType string
	BorrowerID   uint
	DueDate      time.Time
	Notes        string
	LibrarianID  uint
}

// ReturnResult is the outcome of a return
type ReturnResult struct {
	ReturnDate time.Time                `json:"returnDate"`
	Fine       decimal.Decimal          `json:"fine"`
	Loan       *models.BookLoanResponse `json:"bookLoan"`
}

// DeleteLoanResult tells whether a copy went back on the shelf
type DeleteLoanResult struct {
	WasActive            bool `json:"wasActive"`
	AvailabilityRestored bool `json:"availabilityRestored"`
}

// LoanQuery filters a ledger listing
type LoanQuery struct {
	BorrowerType string
	Status       string
}

// Issue lends one copy of a book
func (s *CirculationService) Issue(ctx context.Context, input *IssueInput) (*models.BookLoanResponse, error) {
	schoolName := strings.TrimSpace(input.SchoolName)
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	borrowerType, err := domain.ParseBorrowerType(input.BorrowerType)
	if err != nil {
		return nil, err
	}
	if input.BookID == 0 {
		return nil, domain.Invalidf("bookId is required")
	}
	if input.BorrowerID == 0 {
		return nil, domain.Invalidf("borrowerId is required")
	}
	if input.DueDate.IsZero() {
		return nil, domain.ErrDueDateRequired
	}

	now := s.now()
	if domain.DateOf(input.DueDate).Before(domain.DateOf(now)) {
		return nil, domain.ErrDueDateInPast
	}

	var loan *models.BookLoan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		book, err := books.GetForUpdate(ctx, input.BookID)
		if err != nil {
			return notFoundAs(err, domain.ErrBookNotFound)
		}
		if book.SchoolName != schoolName {
			return domain.ErrBookNotFound
		}

		exists, err := s.borrowerRepo.WithTx(tx).Exists(ctx, schoolName, borrowerType, input.BorrowerID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrBorrowerNotFound
		}

		if domain.BookStatus(book.Status) == domain.BookDiscontinued {
			return domain.ErrBookDiscontinued
		}
		if book.AvailableQuantity < 1 {
			return domain.ErrBookUnavailable
		}

		available := book.AvailableQuantity - 1
		status := domain.DeriveBookStatus(domain.BookStatus(book.Status), available)
		ok, err := books.SetAvailability(ctx, book.ID, book.AvailableQuantity, available, string(status))
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBookUnavailable
		}

		loan = &models.BookLoan{
			SchoolName:   schoolName,
			BookID:       book.ID,
			BorrowerType: string(borrowerType),
			BorrowerID:   input.BorrowerID,
			IssueDate:    now,
			DueDate:      domain.DateOf(input.DueDate),
			Status:       string(domain.LoanBorrowed),
			Fine:         decimal.Zero,
			Notes:        strings.TrimSpace(input.Notes),
			LibrarianID:  input.LibrarianID,
		}
		return s.loanRepo.WithTx(tx).Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Book #%d issued to %s #%d (loan #%d, due %s)",
		loan.BookID, loan.BorrowerType, loan.BorrowerID, loan.ID, loan.DueDate.Format("2006-01-02"))

	return s.presentOne(ctx, loan)
}

// Return closes a loan, freezes its fine and gives the copy back. A nil
// returnDate means now.
func (s *CirculationService) Return(ctx context.Context, schoolName string, loanID uint, returnDate *time.Time) (*ReturnResult, error) {
	now := s.now()
	returned := now
	if returnDate != nil {
		returned = returnDate.UTC()
	}
	if domain.DateOf(returned).After(domain.DateOf(now)) {
		return nil, domain.ErrReturnInFuture
	}

	var loan *models.BookLoan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)

		var err error
		loan, err = loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return notFoundAs(err, domain.ErrLoanNotFound)
		}
		if loan.SchoolName != schoolName {
			return domain.ErrLoanNotFound
		}
		if loan.IsReturned() {
			return domain.ErrLoanAlreadyReturned
		}
		if domain.DateOf(returned).Before(domain.DateOf(loan.IssueDate)) {
			return domain.ErrReturnBeforeIssue
		}

		// the final fine is as of returnDate, not whatever refresh stored last
		fine := s.cfg.FinePolicyFor(schoolName).Compute(loan.DueDate, returned)
		ok, err := loans.MarkReturned(ctx, loan.ID, returned, fine)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrLoanAlreadyReturned
		}

		loan.ReturnDate = &returned
		loan.Status = string(domain.LoanReturned)
		loan.Fine = fine

		return s.giveBack(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan #%d returned (book #%d, fine %s)", loan.ID, loan.BookID, loan.Fine.StringFixed(2))

	resp, err := s.presentOne(ctx, loan)
	if err != nil {
		return nil, err
	}

	return &ReturnResult{
		ReturnDate: returned,
		Fine:       loan.Fine,
		Loan:       resp,
	}, nil
}

// giveBack puts one copy of loan's book back on the shelf. A book that no
// longer exists is skipped; cleanup reports the loan later.
func (s *CirculationService) giveBack(ctx context.Context, tx *gorm.DB, loan *models.BookLoan) error {
	books := s.bookRepo.WithTx(tx)

	book, err := books.GetForUpdate(ctx, loan.BookID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && book.SchoolName != loan.SchoolName) {
		log.Printf("⚠️ Loan #%d: book #%d no longer exists, availability untouched", loan.ID, loan.BookID)
		return nil
	}
	if err != nil {
		return err
	}

	available := domain.ReturnedCopy(book.AvailableQuantity, book.Quantity)
	status := domain.DeriveBookStatus(domain.BookStatus(book.Status), available)
	if available == book.AvailableQuantity && string(status) == book.Status {
		return nil
	}

	ok, err := books.SetAvailability(ctx, book.ID, book.AvailableQuantity, available, string(status))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// DeleteLoan removes a loan record. An active loan's copy is only given back
// when LOAN_DELETE_RESTORES_AVAILABILITY is on; otherwise availability drifts
// until RestoreAvailability runs.
func (s *CirculationService) DeleteLoan(ctx context.Context, schoolName string, loanID uint) (*DeleteLoanResult, error) {
	result := &DeleteLoanResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)

		loan, err := loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return notFoundAs(err, domain.ErrLoanNotFound)
		}
		if loan.SchoolName != schoolName {
			return domain.ErrLoanNotFound
		}

		ok, err := loans.Delete(ctx, loan.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrLoanNotFound
		}

		result.WasActive = !loan.IsReturned()
		if result.WasActive && s.cfg.Circulation.DeleteRestoresAvailability {
			if err := s.giveBack(ctx, tx, loan); err != nil {
				return err
			}
			result.AvailabilityRestored = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.WasActive && !result.AvailabilityRestored {
		log.Printf("⚠️ Active loan #%d deleted (%s); availability not restored", loanID, schoolName)
	} else {
		log.Printf("✅ Loan #%d deleted (%s)", loanID, schoolName)
	}
	return result, nil
}

// GetLoan returns one loan with read-time status and fine
func (s *CirculationService) GetLoan(ctx context.Context, schoolName string, loanID uint) (*models.BookLoanResponse, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrLoanNotFound)
	}
	if loan.SchoolName != schoolName {
		return nil, domain.ErrLoanNotFound
	}
	return s.presentOne(ctx, loan)
}

// ListLoans lists the ledger of schoolName, denormalized with book and
// borrower summaries. Status filtering applies to the derived status.
func (s *CirculationService) ListLoans(ctx context.Context, schoolName string, q LoanQuery) ([]*models.BookLoanResponse, error) {
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}

	filter := repositories.LoanFilter{SchoolName: schoolName}
	if q.BorrowerType != "" {
		bt, err := domain.ParseBorrowerType(q.BorrowerType)
		if err != nil {
			return nil, err
		}
		filter.BorrowerType = string(bt)
	}

	var status domain.LoanStatus
	if q.Status != "" {
		st, err := domain.ParseLoanStatus(q.Status)
		if err != nil {
			return nil, err
		}
		status = st
		filter.ActiveOnly = st.Active()
	}

	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out, err := s.present(ctx, schoolName, loans)
	if err != nil {
		return nil, err
	}

	if status == "" {
		return out, nil
	}

	filtered := out[:0]
	for _, l := range out {
		if l.Status == string(status) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// RefreshOverdue persists the derived status and accrued fine of every open
// loan of schoolName. Returns how many rows changed.
func (s *CirculationService) RefreshOverdue(ctx context.Context, schoolName string) (int, error) {
	loans, err := s.loanRepo.List(ctx, repositories.LoanFilter{SchoolName: schoolName, ActiveOnly: true})
	if err != nil {
		return 0, err
	}

	asOf := s.now()
	policy := s.cfg.FinePolicyFor(schoolName)

	changed := 0
	for _, loan := range loans {
		status := domain.DeriveLoanStatus(loan.ReturnDate, loan.DueDate, asOf)
		fine := policy.Accrue(loan.Fine, loan.DueDate, asOf)
		if string(status) == loan.Status && fine.Equal(loan.Fine) {
			continue
		}

		ok, err := s.loanRepo.UpdateAccrual(ctx, loan.ID, string(status), fine)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}

	if changed > 0 {
		log.Printf("✅ Overdue refresh [%s]: %d loans updated", schoolName, changed)
	}
	return changed, nil
}

// Tenants lists every school that owns books or loans
func (s *CirculationService) Tenants(ctx context.Context) ([]string, error) {
	return s.loanRepo.SchoolNames(ctx)
}

// derive returns status, days overdue and fine as of the service clock.
// Returned loans report their frozen fine.
func (s *CirculationService) derive(loan *models.BookLoan, asOf time.Time) (domain.LoanStatus, int, decimal.Decimal) {
	status := domain.DeriveLoanStatus(loan.ReturnDate, loan.DueDate, asOf)
	if loan.ReturnDate != nil {
		return status, domain.DaysOverdue(loan.DueDate, *loan.ReturnDate), loan.Fine
	}
	fine := s.cfg.FinePolicyFor(loan.SchoolName).Accrue(loan.Fine, loan.DueDate, asOf)
	return status, domain.DaysOverdue(loan.DueDate, asOf), fine
}

func (s *CirculationService) presentOne(ctx context.Context, loan *models.BookLoan) (*models.BookLoanResponse, error) {
	out, err := s.present(ctx, loan.SchoolName, []*models.BookLoan{loan})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// present joins loans with their book and borrower at read time
func (s *CirculationService) present(ctx context.Context, schoolName string, loans []*models.BookLoan) ([]*models.BookLoanResponse, error) {
	var bookIDs, studentIDs, teacherIDs []uint
	for _, l := range loans {
		bookIDs = append(bookIDs, l.BookID)
		switch domain.BorrowerType(l.BorrowerType) {
		case domain.BorrowerStudent:
			studentIDs = append(studentIDs, l.BorrowerID)
		case domain.BorrowerTeacher:
			teacherIDs = append(teacherIDs, l.BorrowerID)
		}
	}

	books, err := s.bookRepo.ByIDs(ctx, schoolName, bookIDs)
	if err != nil {
		return nil, err
	}
	students, err := s.borrowers.Summaries(ctx, schoolName, domain.BorrowerStudent, studentIDs)
	if err != nil {
		return nil, err
	}
	teachers, err := s.borrowers.Summaries(ctx, schoolName, domain.BorrowerTeacher, teacherIDs)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	out := make([]*models.BookLoanResponse, len(loans))
	for i, l := range loans {
		status, days, fine := s.derive(l, asOf)
		resp := l.ToResponse(string(status), days, fine)

		if b, ok := books[l.BookID]; ok {
			resp.Book = b.ToSummary()
		}
		switch domain.BorrowerType(l.BorrowerType) {
		case domain.BorrowerStudent:
			resp.Student = students[l.BorrowerID]
		case domain.BorrowerTeacher:
			resp.Teacher = teachers[l.BorrowerID]
		}

		out[i] = resp
	}
	return out, nil
}
