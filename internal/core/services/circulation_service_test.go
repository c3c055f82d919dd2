package services_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

func Test_Circulation_SingleCopyLifecycle(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentA := f.student(t, schoolA)
	studentB := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentA, f.tomorrow())
	require.NoError(t, err)
	assert.Equal(t, "borrowed", loan.Status)
	assert.True(t, loan.Fine.IsZero())
	require.NotNil(t, loan.Book)
	assert.Equal(t, bookID, loan.Book.ID)
	require.NotNil(t, loan.Student)
	assert.Equal(t, studentA, loan.Student.ID)
	require.NotNil(t, loan.StudentID)
	assert.Nil(t, loan.TeacherID)

	book := f.loadBook(t, bookID)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.Equal(t, "out_of_stock", book.Status)

	_, err = f.issue(schoolA, bookID, studentB, f.tomorrow())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrBookUnavailable)

	res, err := f.circulation.Return(f.ctx, schoolA, loan.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "returned", res.Loan.Status)
	assert.True(t, res.Fine.IsZero())
	assert.NotNil(t, res.Loan.ReturnDate)

	book = f.loadBook(t, bookID)
	assert.Equal(t, 1, book.AvailableQuantity)
	assert.Equal(t, "available", book.Status)
}

func Test_Circulation_Issue_Validation(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)
	studentID := f.student(t, schoolA)
	otherSchoolStudent := f.student(t, schoolB)

	tests := []struct {
		name  string
		input services.IssueInput
		want  error
	}{
		{
			name:  "due_date_in_past",
			input: services.IssueInput{SchoolName: schoolA, BookID: bookID, BorrowerType: "student", BorrowerID: studentID, DueDate: f.clock.Now().Add(-day)},
			want:  domain.ErrDueDateInPast,
		},
		{
			name:  "missing_due_date",
			input: services.IssueInput{SchoolName: schoolA, BookID: bookID, BorrowerType: "student", BorrowerID: studentID},
			want:  domain.ErrDueDateRequired,
		},
		{
			name:  "unknown_book",
			input: services.IssueInput{SchoolName: schoolA, BookID: 999, BorrowerType: "student", BorrowerID: studentID, DueDate: f.tomorrow()},
			want:  domain.ErrBookNotFound,
		},
		{
			name:  "unknown_borrower",
			input: services.IssueInput{SchoolName: schoolA, BookID: bookID, BorrowerType: "teacher", BorrowerID: studentID, DueDate: f.tomorrow()},
			want:  domain.ErrBorrowerNotFound,
		},
		{
			name:  "borrower_of_other_school",
			input: services.IssueInput{SchoolName: schoolA, BookID: bookID, BorrowerType: "student", BorrowerID: otherSchoolStudent, DueDate: f.tomorrow()},
			want:  domain.ErrBorrowerNotFound,
		},
		{
			name:  "book_of_other_school",
			input: services.IssueInput{SchoolName: schoolB, BookID: bookID, BorrowerType: "student", BorrowerID: otherSchoolStudent, DueDate: f.tomorrow()},
			want:  domain.ErrBookNotFound,
		},
		{
			name:  "bad_borrower_type",
			input: services.IssueInput{SchoolName: schoolA, BookID: bookID, BorrowerType: "parent", BorrowerID: studentID, DueDate: f.tomorrow()},
			want:  domain.ErrInvalidBorrowerType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.circulation.Issue(f.ctx, &input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// nothing above may touch the shelf
	assert.Equal(t, 2, f.loadBook(t, bookID).AvailableQuantity)
}

func Test_Circulation_Issue_DueToday(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, "borrowed", loan.Status)
}

func Test_Circulation_Issue_Discontinued(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 3)
	studentID := f.student(t, schoolA)

	status := "discontinued"
	_, err := f.catalog.Update(f.ctx, schoolA, bookID, &services.UpdateBookInput{Status: &status})
	require.NoError(t, err)

	_, err = f.issue(schoolA, bookID, studentID, f.tomorrow())
	assert.ErrorIs(t, err, domain.ErrBookDiscontinued)
}

func Test_Circulation_ConcurrentIssue_NoOverIssue(t *testing.T) {
	f := newFixture(t)
	const copies = 3
	const callers = 12

	bookID := f.book(t, schoolA, copies)
	students := make([]uint, callers)
	for i := range students {
		students[i] = f.student(t, schoolA)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(studentID uint) {
			defer wg.Done()
			_, err := f.issue(schoolA, bookID, studentID, f.tomorrow())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrConflict):
				conflicts++
			}
		}(students[i])
	}
	wg.Wait()

	assert.Equal(t, copies, successes)
	assert.Equal(t, callers-copies, conflicts)

	book := f.loadBook(t, bookID)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.Equal(t, "out_of_stock", book.Status)
	assert.Equal(t, int64(copies), f.activeLoans(t, bookID))
}

func Test_Circulation_Return_Twice(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)

	_, err = f.circulation.Return(f.ctx, schoolA, loan.ID, nil)
	require.NoError(t, err)

	_, err = f.circulation.Return(f.ctx, schoolA, loan.ID, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyReturned)

	assert.Equal(t, 2, f.loadBook(t, bookID).AvailableQuantity)
}

func Test_Circulation_Return_Validation(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)

	future := f.clock.Now().Add(2 * day)
	_, err = f.circulation.Return(f.ctx, schoolA, loan.ID, &future)
	assert.ErrorIs(t, err, domain.ErrReturnInFuture)

	past := f.clock.Now().Add(-3 * day)
	_, err = f.circulation.Return(f.ctx, schoolA, loan.ID, &past)
	assert.ErrorIs(t, err, domain.ErrReturnBeforeIssue)

	_, err = f.circulation.Return(f.ctx, schoolB, loan.ID, nil)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	_, err = f.circulation.Return(f.ctx, schoolA, 4242, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 0, f.loadBook(t, bookID).AvailableQuantity)
}

func Test_Circulation_OverdueFine(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	// issued five days ago, due three days ago
	issuedAt := f.clock.Now()
	loan, err := f.issue(schoolA, bookID, studentID, issuedAt.Add(2*day))
	require.NoError(t, err)
	f.clock.Advance(5 * day)

	got, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)
	assert.Equal(t, 3, got.DaysOverdue)
	assert.True(t, decimal.NewFromInt(3).Equal(got.Fine), "fine = %s", got.Fine)

	overdue, err := f.circulation.ListLoans(f.ctx, schoolA, services.LoanQuery{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	borrowed, err := f.circulation.ListLoans(f.ctx, schoolA, services.LoanQuery{Status: "borrowed"})
	require.NoError(t, err)
	assert.Empty(t, borrowed)
}

func Test_Circulation_FineMonotonic_FrozenOnReturn(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.clock.Now())
	require.NoError(t, err)

	previous := decimal.Zero
	for i := 0; i < 4; i++ {
		f.clock.Advance(day)
		got, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
		require.NoError(t, err)
		assert.True(t, got.Fine.GreaterThanOrEqual(previous))
		previous = got.Fine
	}

	res, err := f.circulation.Return(f.ctx, schoolA, loan.ID, nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(res.Fine), "fine = %s", res.Fine)

	f.clock.Advance(10 * day)
	got, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "returned", got.Status)
	assert.True(t, res.Fine.Equal(got.Fine))
}

func Test_Circulation_BackdatedReturn_IgnoresRefreshedFine(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	issuedAt := f.clock.Now()
	loan, err := f.issue(schoolA, bookID, studentID, issuedAt.Add(2*day))
	require.NoError(t, err)

	f.clock.Advance(10 * day)
	changed, err := f.circulation.RefreshOverdue(f.ctx, schoolA)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.Fine.IsPositive(), "fine = %s", stored.Fine)

	returnedOn := issuedAt.Add(day)
	res, err := f.circulation.Return(f.ctx, schoolA, loan.ID, &returnedOn)
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(res.Fine), "fine = %s", res.Fine)

	got, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "returned", got.Status)
	assert.True(t, decimal.Zero.Equal(got.Fine), "fine = %s", got.Fine)
}

func Test_Circulation_TenantFinePolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.Circulation.FineOverrides = map[string]domain.FinePolicy{
		schoolA: {PerDay: decimal.RequireFromString("0.50"), GraceDays: 1},
	}
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.clock.Now())
	require.NoError(t, err)
	f.clock.Advance(4 * day)

	got, err := f.circulation.GetLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)
	assert.True(t, decimal.RequireFromString("1.5").Equal(got.Fine), "fine = %s", got.Fine)
}

func Test_Circulation_RefreshOverdue(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)
	studentID := f.student(t, schoolA)

	late, err := f.issue(schoolA, bookID, studentID, f.clock.Now())
	require.NoError(t, err)
	_, err = f.issue(schoolA, bookID, studentID, f.clock.Now().Add(30*day))
	require.NoError(t, err)

	f.clock.Advance(2 * day)

	changed, err := f.circulation.RefreshOverdue(f.ctx, schoolA)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	var stored models.BookLoan
	require.NoError(t, f.db.First(&stored, late.ID).Error)
	assert.Equal(t, "overdue", stored.Status)
	assert.True(t, decimal.NewFromInt(2).Equal(stored.Fine))

	changed, err = f.circulation.RefreshOverdue(f.ctx, schoolA)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func Test_Circulation_DeleteLoan_LeavesDrift(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 3)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)

	res, err := f.circulation.DeleteLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.True(t, res.WasActive)
	assert.False(t, res.AvailabilityRestored)
	assert.Equal(t, 2, f.loadBook(t, bookID).AvailableQuantity)

	_, err = f.circulation.DeleteLoan(f.ctx, schoolA, loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func Test_Circulation_DeleteLoan_RestoresWhenConfigured(t *testing.T) {
	f := newFixture(t)
	f.cfg.Circulation.DeleteRestoresAvailability = true
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)

	res, err := f.circulation.DeleteLoan(f.ctx, schoolA, loan.ID)
	require.NoError(t, err)
	assert.True(t, res.AvailabilityRestored)

	book := f.loadBook(t, bookID)
	assert.Equal(t, 1, book.AvailableQuantity)
	assert.Equal(t, "available", book.Status)
}

func Test_Circulation_Cleanup_BookMissing(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)

	loan, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)

	// the book disappears behind the catalog's back
	require.NoError(t, f.db.Delete(&models.Book{}, bookID).Error)

	res, err := f.circulation.CleanupOrphanedLoans(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CleanedCount)
	require.Len(t, res.Details, 1)
	assert.Equal(t, loan.ID, res.Details[0].LoanID)
	assert.Equal(t, domain.OrphanBookMissing, res.Details[0].Reason)
	assert.False(t, res.Details[0].AvailabilityRestored)
	assert.NotZero(t, res.RunID)

	again, err := f.circulation.CleanupOrphanedLoans(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Zero(t, again.CleanedCount)
	assert.Empty(t, again.Details)
}

func Test_Circulation_Cleanup_BorrowerMissing_GivesCopyBack(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)
	keep := f.student(t, schoolA)
	gone := f.student(t, schoolA)
	f.teacher(t, schoolA)

	_, err := f.issue(schoolA, bookID, keep, f.tomorrow())
	require.NoError(t, err)
	orphan, err := f.issue(schoolA, bookID, gone, f.tomorrow())
	require.NoError(t, err)
	require.NoError(t, f.borrowers.DeleteStudent(f.ctx, schoolA, gone))

	res, err := f.circulation.CleanupOrphanedLoans(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CleanedCount)
	require.Len(t, res.Details, 1)
	assert.Equal(t, orphan.ID, res.Details[0].LoanID)
	assert.Equal(t, domain.OrphanBorrowerMissing, res.Details[0].Reason)
	assert.True(t, res.Details[0].WasActive)
	assert.True(t, res.Details[0].AvailabilityRestored)

	book := f.loadBook(t, bookID)
	assert.Equal(t, 1, book.AvailableQuantity)
	assert.Equal(t, book.Quantity, book.AvailableQuantity+int(f.activeLoans(t, bookID)))
}

func Test_Circulation_Cleanup_TenantScoped(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolB, 1)
	studentID := f.student(t, schoolB)

	_, err := f.issue(schoolB, bookID, studentID, f.tomorrow())
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.Book{}, bookID).Error)

	res, err := f.circulation.CleanupOrphanedLoans(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Zero(t, res.CleanedCount)
	assert.Equal(t, int64(1), f.activeLoans(t, bookID))
}

func Test_Circulation_Restore_AfterDrift(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 3)
	untouched := f.book(t, schoolA, 2)
	studentID := f.student(t, schoolA)

	first, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)
	_, err = f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)
	_, err = f.circulation.DeleteLoan(f.ctx, schoolA, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.loadBook(t, bookID).AvailableQuantity)

	res, err := f.circulation.RestoreAvailability(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RestoredCount)
	require.Len(t, res.Details, 1)
	assert.Equal(t, bookID, res.Details[0].BookID)
	assert.Equal(t, 1, res.Details[0].PreviousAvailable)
	assert.Equal(t, 2, res.Details[0].AvailableQuantity)
	assert.Equal(t, int64(1), res.Details[0].ActiveLoans)

	assert.Equal(t, 2, f.loadBook(t, bookID).AvailableQuantity)
	assert.Equal(t, 2, f.loadBook(t, untouched).AvailableQuantity)

	again, err := f.circulation.RestoreAvailability(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Zero(t, again.RestoredCount)
}

func Test_Circulation_Restore_ManualEditAndStatus(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)

	zero := 0
	_, err := f.catalog.Update(f.ctx, schoolA, bookID, &services.UpdateBookInput{AvailableQuantity: &zero})
	require.NoError(t, err)
	require.Equal(t, "out_of_stock", f.loadBook(t, bookID).Status)

	res, err := f.circulation.RestoreAvailability(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RestoredCount)

	book := f.loadBook(t, bookID)
	assert.Equal(t, 2, book.AvailableQuantity)
	assert.Equal(t, "available", book.Status)
}

func Test_Circulation_Restore_ReportsOverLoanedBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 2)
	studentID := f.student(t, schoolA)

	for i := 0; i < 2; i++ {
		_, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
		require.NoError(t, err)
	}
	one := 1
	_, err := f.catalog.Update(f.ctx, schoolA, bookID, &services.UpdateBookInput{Quantity: &one})
	require.NoError(t, err)

	res, err := f.circulation.RestoreAvailability(f.ctx, schoolA, "tester")
	require.NoError(t, err)
	require.Len(t, res.Details, 1)
	assert.NotEmpty(t, res.Details[0].Inconsistency)
	assert.Equal(t, 0, f.loadBook(t, bookID).AvailableQuantity)
}

func Test_Circulation_ReconciliationRuns(t *testing.T) {
	f := newFixture(t)
	f.book(t, schoolA, 1)

	_, err := f.circulation.CleanupOrphanedLoans(f.ctx, schoolA, "alice")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.circulation.RestoreAvailability(f.ctx, schoolA, "")
	require.NoError(t, err)

	runs, err := f.circulation.ListRuns(f.ctx, schoolA, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, string(domain.ReconcileRestore), runs[0].Kind)
	assert.Equal(t, "system", runs[0].TriggeredBy)
	assert.Equal(t, string(domain.ReconcileCleanup), runs[1].Kind)
	assert.Equal(t, "alice", runs[1].TriggeredBy)
	assert.JSONEq(t, "[]", string(runs[1].Details))

	other, err := f.circulation.ListRuns(f.ctx, schoolB, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func Test_Circulation_ListLoans_ByBorrowerType(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 5)
	studentID := f.student(t, schoolA)
	teacherID := f.teacher(t, schoolA)

	_, err := f.issue(schoolA, bookID, studentID, f.tomorrow())
	require.NoError(t, err)
	teacherLoan, err := f.circulation.Issue(f.ctx, &services.IssueInput{
		SchoolName:   schoolA,
		BookID:       bookID,
		BorrowerType: "Teacher",
		BorrowerID:   teacherID,
		DueDate:      f.tomorrow(),
	})
	require.NoError(t, err)
	require.NotNil(t, teacherLoan.Teacher)

	all, err := f.circulation.ListLoans(f.ctx, schoolA, services.LoanQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	teachers, err := f.circulation.ListLoans(f.ctx, schoolA, services.LoanQuery{BorrowerType: "teacher"})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, teacherLoan.ID, teachers[0].ID)
	assert.Nil(t, teachers[0].Student)

	_, err = f.circulation.ListLoans(f.ctx, schoolA, services.LoanQuery{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	none, err := f.circulation.ListLoans(f.ctx, schoolB, services.LoanQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func Test_Circulation_AvailabilityConservation(t *testing.T) {
	f := newFixture(t)
	books := []uint{f.book(t, schoolA, 1), f.book(t, schoolA, 2), f.book(t, schoolA, 4)}
	students := []uint{f.student(t, schoolA), f.student(t, schoolA)}

	rng := rand.New(rand.NewSource(7))
	var open []uint

	for step := 0; step < 60; step++ {
		if len(open) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(open))
			_, err := f.circulation.Return(f.ctx, schoolA, open[i], nil)
			require.NoError(t, err)
			open = append(open[:i], open[i+1:]...)
		} else {
			loan, err := f.issue(schoolA, books[rng.Intn(len(books))], students[rng.Intn(len(students))], f.tomorrow())
			if err != nil {
				require.ErrorIs(t, err, domain.ErrConflict)
			} else {
				open = append(open, loan.ID)
			}
		}

		for _, id := range books {
			b := f.loadBook(t, id)
			require.Equal(t, b.Quantity, b.AvailableQuantity+int(f.activeLoans(t, id)), "book #%d at step %d", id, step)
			require.Equal(t, b.AvailableQuantity == 0, b.Status == "out_of_stock")
		}
	}
}
