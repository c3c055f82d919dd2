package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/core/domain"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func Test_DaysOverdue(t *testing.T) {
	due := date(2025, 3, 10, 0)

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{name: "before_due", asOf: date(2025, 3, 9, 12), want: 0},
		{name: "on_due_day_evening", asOf: date(2025, 3, 10, 23), want: 0},
		{name: "one_day_late", asOf: date(2025, 3, 11, 1), want: 1},
		{name: "three_days_late", asOf: date(2025, 3, 13, 8), want: 3},
		{name: "across_month", asOf: date(2025, 4, 1, 0), want: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DaysOverdue(due, tt.asOf))
		})
	}
}

func Test_DeriveLoanStatus(t *testing.T) {
	due := date(2025, 3, 10, 0)
	returned := date(2025, 3, 20, 0)

	assert.Equal(t, domain.LoanBorrowed, domain.DeriveLoanStatus(nil, due, date(2025, 3, 10, 18)))
	assert.Equal(t, domain.LoanOverdue, domain.DeriveLoanStatus(nil, due, date(2025, 3, 11, 0)))
	assert.Equal(t, domain.LoanReturned, domain.DeriveLoanStatus(&returned, due, date(2025, 3, 30, 0)))
}

func Test_FinePolicy_Compute(t *testing.T) {
	due := date(2025, 3, 10, 0)

	t.Run("default_policy_three_days", func(t *testing.T) {
		fine := domain.DefaultFinePolicy().Compute(due, date(2025, 3, 13, 9))
		assert.True(t, decimal.NewFromFloat(3.0).Equal(fine), "got %s", fine)
	})

	t.Run("grace_days_are_free", func(t *testing.T) {
		p := domain.FinePolicy{PerDay: decimal.RequireFromString("0.50"), GraceDays: 2}
		assert.True(t, p.Compute(due, date(2025, 3, 12, 0)).IsZero())
		assert.Equal(t, "1.5", p.Compute(due, date(2025, 3, 15, 0)).String())
	})

	t.Run("not_overdue_is_zero", func(t *testing.T) {
		assert.True(t, domain.DefaultFinePolicy().Compute(due, date(2025, 3, 1, 0)).IsZero())
	})

	t.Run("monotonic_over_time", func(t *testing.T) {
		p := domain.DefaultFinePolicy()
		prev := decimal.Zero
		for d := 0; d < 40; d++ {
			fine := p.Compute(due, due.AddDate(0, 0, d))
			assert.True(t, fine.GreaterThanOrEqual(prev))
			prev = fine
		}
	})
}

func Test_FinePolicy_Accrue_NeverDecreases(t *testing.T) {
	due := date(2025, 3, 10, 0)
	p := domain.FinePolicy{PerDay: decimal.NewFromInt(1)}

	stored := decimal.NewFromInt(10)
	assert.True(t, stored.Equal(p.Accrue(stored, due, date(2025, 3, 12, 0))))
	assert.True(t, decimal.NewFromInt(12).Equal(p.Accrue(stored, due, date(2025, 3, 22, 0))))
}

func Test_DeriveBookStatus(t *testing.T) {
	assert.Equal(t, domain.BookOutOfStock, domain.DeriveBookStatus(domain.BookAvailable, 0))
	assert.Equal(t, domain.BookAvailable, domain.DeriveBookStatus(domain.BookOutOfStock, 1))
	assert.Equal(t, domain.BookDiscontinued, domain.DeriveBookStatus(domain.BookDiscontinued, 4))
}

func Test_ExpectedAvailable_And_ReturnedCopy(t *testing.T) {
	assert.Equal(t, 3, domain.ExpectedAvailable(5, 2))
	assert.Equal(t, 0, domain.ExpectedAvailable(2, 5))
	assert.Equal(t, 2, domain.ReturnedCopy(1, 4))
	assert.Equal(t, 4, domain.ReturnedCopy(4, 4))
}

func Test_ParseBorrowerType(t *testing.T) {
	bt, err := domain.ParseBorrowerType(" Teacher ")
	require.NoError(t, err)
	assert.Equal(t, domain.BorrowerTeacher, bt)

	_, err = domain.ParseBorrowerType("librarian")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func Test_OrphanReason(t *testing.T) {
	assert.Equal(t, "", domain.OrphanReason(true, true))
	assert.Equal(t, domain.OrphanBookMissing, domain.OrphanReason(false, true))
	assert.Equal(t, domain.OrphanBorrowerMissing, domain.OrphanReason(true, false))
	assert.Equal(t, domain.OrphanBothMissing, domain.OrphanReason(false, false))
}

func Test_ErrorClasses(t *testing.T) {
	assert.True(t, errors.Is(domain.ErrBookUnavailable, domain.ErrConflict))
	assert.True(t, errors.Is(domain.ErrLoanNotFound, domain.ErrNotFound))
	assert.True(t, errors.Is(domain.ErrDueDateInPast, domain.ErrInvalidArgument))
	assert.False(t, errors.Is(domain.ErrBookUnavailable, domain.ErrNotFound))

	err := domain.Invalidf("title is required")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, "title is required", err.Error())
}
