package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DateOf truncates t to midnight UTC. Due dates are calendar days.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOverdue counts whole calendar days from due to asOf, never negative.
func DaysOverdue(due, asOf time.Time) int {
	days := int(DateOf(asOf).Sub(DateOf(due)) / day)
	if days < 0 {
		return 0
	}
	return days
}

// DeriveLoanStatus: returned if a return date is set, overdue once asOf is
// past the due day, borrowed otherwise.
func DeriveLoanStatus(returnDate *time.Time, due, asOf time.Time) LoanStatus {
	if returnDate != nil {
		return LoanReturned
	}
	if DateOf(asOf).After(DateOf(due)) {
		return LoanOverdue
	}
	return LoanBorrowed
}

// FinePolicy is the per-tenant fine rule
type FinePolicy struct {
	PerDay    decimal.Decimal
	GraceDays int
}

// DefaultFinePolicy charges 1.00 per overdue day with no grace period
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{PerDay: decimal.NewFromInt(1)}
}

// Compute returns max(0, daysOverdue-grace) * perDay as of asOf
func (p FinePolicy) Compute(due, asOf time.Time) decimal.Decimal {
	days := DaysOverdue(due, asOf) - p.GraceDays
	if days <= 0 || p.PerDay.Sign() <= 0 {
		return decimal.Zero
	}
	return p.PerDay.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// Accrue returns the fine to persist: stored fines never go down.
func (p FinePolicy) Accrue(stored decimal.Decimal, due, asOf time.Time) decimal.Decimal {
	computed := p.Compute(due, asOf)
	if stored.GreaterThan(computed) {
		return stored
	}
	return computed
}

// DeriveBookStatus keeps a discontinued title discontinued and otherwise
// ties the status to the available count.
func DeriveBookStatus(current BookStatus, available int) BookStatus {
	if current == BookDiscontinued {
		return BookDiscontinued
	}
	if available <= 0 {
		return BookOutOfStock
	}
	return BookAvailable
}

// ExpectedAvailable is quantity minus active loans, floored at zero
func ExpectedAvailable(quantity int, activeLoans int64) int {
	expected := int64(quantity) - activeLoans
	if expected < 0 {
		return 0
	}
	return int(expected)
}

// ReturnedCopy is the availability after giving one copy back, capped at quantity
func ReturnedCopy(available, quantity int) int {
	if available+1 > quantity {
		return quantity
	}
	return available + 1
}
