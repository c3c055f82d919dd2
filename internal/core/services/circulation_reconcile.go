package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// errNothingToDo aborts a per-record transaction that found nothing to repair
var errNothingToDo = errors.New("record no longer needs repair")

// OrphanDetail describes one loan removed by cleanup
type OrphanDetail struct {
	LoanID               uint   `json:"loanId"`
	BookID               uint   `json:"bookId"`
	BorrowerType         string `json:"borrowerType"`
	BorrowerID           uint   `json:"borrowerId"`
	Reason               string `json:"reason"`
	WasActive            bool   `json:"wasActive"`
	AvailabilityRestored bool   `json:"availabilityRestored"`
	Error                string `json:"error,omitempty"`
}

// CleanupResult is the outcome of CleanupOrphanedLoans
type CleanupResult struct {
	CleanedCount int            `json:"cleanedCount"`
	Details      []OrphanDetail `json:"details"`
	RunID        uint           `json:"runId"`
}

// RestoreDetail describes one book whose availability was recomputed
type RestoreDetail struct {
	BookID            uint   `json:"bookId"`
	Title             string `json:"title"`
	Quantity          int    `json:"quantity"`
	ActiveLoans       int64  `json:"activeLoans"`
	PreviousAvailable int    `json:"previousAvailable"`
	AvailableQuantity int    `json:"availableQuantity"`
	PreviousStatus    string `json:"previousStatus"`
	Status            string `json:"status"`
	Inconsistency     string `json:"inconsistency,omitempty"`
	Error             string `json:"error,omitempty"`
}

// RestoreResult is the outcome of RestoreAvailability
type RestoreResult struct {
	RestoredCount int             `json:"restoredCount"`
	Details       []RestoreDetail `json:"details"`
	RunID         uint            `json:"runId"`
}

// CleanupOrphanedLoans removes loans of schoolName whose book or borrower no
// longer resolves. Candidates come from a snapshot and each is re-verified
// under lock before it is deleted. An active orphan whose book still exists
// gives its copy back in the same transaction.
func (s *CirculationService) CleanupOrphanedLoans(ctx context.Context, schoolName, triggeredBy string) (*CleanupResult, error) {
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	started := s.now()

	candidates, err := s.orphanCandidates(ctx, schoolName)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{Details: []OrphanDetail{}}
	var failures []string

	for _, candidate := range candidates {
		detail, err := s.removeOrphan(ctx, schoolName, candidate)
		if errors.Is(err, errNothingToDo) {
			continue
		}
		if err != nil {
			detail.Error = err.Error()
			failures = append(failures, fmt.Sprintf("loan #%d: %v", candidate.ID, err))
			log.Printf("❌ Cleanup [%s]: loan #%d: %v", schoolName, candidate.ID, err)
		} else {
			result.CleanedCount++
			log.Printf("✅ Cleanup [%s]: removed loan #%d (%s)", schoolName, detail.LoanID, detail.Reason)
		}
		result.Details = append(result.Details, detail)
	}

	log.Printf("✅ Cleanup [%s] finished: %d orphaned loans removed", schoolName, result.CleanedCount)

	result.RunID = s.recordRun(ctx, schoolName, domain.ReconcileCleanup, triggeredBy,
		result.CleanedCount, result.Details, failures, started)
	return result, nil
}

// orphanCandidates resolves every loan of schoolName in three batched lookups
func (s *CirculationService) orphanCandidates(ctx context.Context, schoolName string) ([]*models.BookLoan, error) {
	loans, err := s.loanRepo.List(ctx, repositories.LoanFilter{SchoolName: schoolName})
	if err != nil {
		return nil, err
	}

	var bookIDs, studentIDs, teacherIDs []uint
	for _, l := range loans {
		bookIDs = append(bookIDs, l.BookID)
		if l.BorrowerType == string(domain.BorrowerTeacher) {
			teacherIDs = append(teacherIDs, l.BorrowerID)
		} else {
			studentIDs = append(studentIDs, l.BorrowerID)
		}
	}

	books, err := s.bookRepo.ExistingIDs(ctx, schoolName, bookIDs)
	if err != nil {
		return nil, err
	}
	students, err := s.borrowerRepo.ExistingIDs(ctx, schoolName, domain.BorrowerStudent, studentIDs)
	if err != nil {
		return nil, err
	}
	teachers, err := s.borrowerRepo.ExistingIDs(ctx, schoolName, domain.BorrowerTeacher, teacherIDs)
	if err != nil {
		return nil, err
	}

	var candidates []*models.BookLoan
	for _, l := range loans {
		borrowerExists := students[l.BorrowerID]
		if l.BorrowerType == string(domain.BorrowerTeacher) {
			borrowerExists = teachers[l.BorrowerID]
		}
		if domain.OrphanReason(books[l.BookID], borrowerExists) != "" {
			candidates = append(candidates, l)
		}
	}
	return candidates, nil
}

func (s *CirculationService) removeOrphan(ctx context.Context, schoolName string, candidate *models.BookLoan) (OrphanDetail, error) {
	detail := OrphanDetail{
		LoanID:       candidate.ID,
		BookID:       candidate.BookID,
		BorrowerType: candidate.BorrowerType,
		BorrowerID:   candidate.BorrowerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)

		loan, err := loans.GetForUpdate(ctx, candidate.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNothingToDo
		}
		if err != nil {
			return err
		}

		existing, err := s.bookRepo.WithTx(tx).ExistingIDs(ctx, schoolName, []uint{loan.BookID})
		if err != nil {
			return err
		}
		borrowerType := domain.BorrowerType(loan.BorrowerType)
		if borrowerType != domain.BorrowerTeacher {
			borrowerType = domain.BorrowerStudent
		}
		borrowerExists, err := s.borrowerRepo.WithTx(tx).Exists(ctx, schoolName, borrowerType, loan.BorrowerID)
		if err != nil {
			return err
		}

		detail.Reason = domain.OrphanReason(existing[loan.BookID], borrowerExists)
		if detail.Reason == "" {
			return errNothingToDo
		}

		if _, err := loans.Delete(ctx, loan.ID); err != nil {
			return err
		}

		detail.WasActive = !loan.IsReturned()
		if detail.WasActive && existing[loan.BookID] {
			if err := s.giveBack(ctx, tx, loan); err != nil {
				return err
			}
			detail.AvailabilityRestored = true
		}
		return nil
	})

	return detail, err
}

// RestoreAvailability recomputes availableQuantity = quantity - active loans
// for every book of schoolName, regardless of the stored value, and
// re-derives status. Each book is locked while it is recounted.
func (s *CirculationService) RestoreAvailability(ctx context.Context, schoolName, triggeredBy string) (*RestoreResult, error) {
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	started := s.now()

	books, err := s.bookRepo.ListBySchool(ctx, schoolName)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{Details: []RestoreDetail{}}
	var failures []string

	for _, snapshot := range books {
		detail, changed, err := s.restoreBook(ctx, schoolName, snapshot.ID)
		if errors.Is(err, errNothingToDo) {
			continue
		}
		if err != nil {
			detail.Error = err.Error()
			failures = append(failures, fmt.Sprintf("book #%d: %v", snapshot.ID, err))
			log.Printf("❌ Restore [%s]: book #%d: %v", schoolName, snapshot.ID, err)
			result.Details = append(result.Details, detail)
			continue
		}

		if detail.Inconsistency != "" {
			log.Printf("⚠️ Restore [%s]: book #%d: %s", schoolName, detail.BookID, detail.Inconsistency)
		}
		if changed {
			result.RestoredCount++
			log.Printf("✅ Restore [%s]: book #%d %d -> %d (%s)", schoolName, detail.BookID,
				detail.PreviousAvailable, detail.AvailableQuantity, detail.Status)
		}
		if changed || detail.Inconsistency != "" {
			result.Details = append(result.Details, detail)
		}
	}

	log.Printf("✅ Restore [%s] finished: %d books corrected", schoolName, result.RestoredCount)

	result.RunID = s.recordRun(ctx, schoolName, domain.ReconcileRestore, triggeredBy,
		result.RestoredCount, result.Details, failures, started)
	return result, nil
}

func (s *CirculationService) restoreBook(ctx context.Context, schoolName string, bookID uint) (RestoreDetail, bool, error) {
	detail := RestoreDetail{BookID: bookID}
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		book, err := books.GetForUpdate(ctx, bookID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNothingToDo
		}
		if err != nil {
			return err
		}

		active, err := s.loanRepo.WithTx(tx).CountActiveByBook(ctx, schoolName, book.ID)
		if err != nil {
			return err
		}

		available := domain.ExpectedAvailable(book.Quantity, active)
		status := domain.DeriveBookStatus(domain.BookStatus(book.Status), available)

		detail.Title = book.Title
		detail.Quantity = book.Quantity
		detail.ActiveLoans = active
		detail.PreviousAvailable = book.AvailableQuantity
		detail.AvailableQuantity = available
		detail.PreviousStatus = book.Status
		detail.Status = string(status)
		if active > int64(book.Quantity) {
			detail.Inconsistency = domain.Inconsistentf("%d active loans exceed quantity %d", active, book.Quantity).Error()
		}

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
		changed = true
		return nil
	})

	return detail, changed, err
}

// ListRuns returns the latest reconciliation runs of schoolName
func (s *CirculationService) ListRuns(ctx context.Context, schoolName string, limit int) ([]*models.ReconciliationRun, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.runRepo.ListBySchool(ctx, schoolName, limit)
}

// recordRun stores the audit row of a repair job. Failing to store it is
// logged and never fails the job itself.
func (s *CirculationService) recordRun(
	ctx context.Context,
	schoolName string,
	kind domain.ReconciliationKind,
	triggeredBy string,
	affected int,
	details interface{},
	failures []string,
	started time.Time,
) uint {
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(details)
	if err != nil {
		log.Printf("⚠️ %s [%s]: cannot encode run details: %v", kind, schoolName, err)
		raw = []byte("[]")
	}

	if triggeredBy == "" {
		triggeredBy = "system"
	}

	run := &models.ReconciliationRun{
		SchoolName:    schoolName,
		Kind:          string(kind),
		AffectedCount: affected,
		Details:       datatypes.JSON(raw),
		TriggeredBy:   triggeredBy,
		Error:         strings.Join(failures, "; "),
		StartedAt:     started,
		FinishedAt:    s.now(),
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		log.Printf("⚠️ %s [%s]: cannot store run: %v", kind, schoolName, err)
		return 0
	}
	return run.ID
}
