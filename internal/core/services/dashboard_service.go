package services

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db       *gorm.DB
	bookRepo *repositories.BookRepository
	loanRepo *repositories.LoanRepository
	cfg      *config.Config
	now      domain.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	bookRepo *repositories.BookRepository,
	loanRepo *repositories.LoanRepository,
	cfg *config.Config,
) *DashboardService {
	return &DashboardService{
		db:       db,
		bookRepo: bookRepo,
		loanRepo: loanRepo,
		cfg:      cfg,
		now:      domain.SystemClock,
	}
}

// WithClock replaces the wall clock
func (s *DashboardService) WithClock(clock domain.Clock) *DashboardService {
	s.now = clock
	return s
}

// BorrowerStats aggregates the loans of one borrower type
type BorrowerStats struct {
	Active  int             `json:"active"`
	Overdue int             `json:"overdue"`
	Fines   decimal.Decimal `json:"fines"`
}

// DashboardData represents the library dashboard of one school
type DashboardData struct {
	SchoolName string    `json:"schoolName"`
	AsOf       time.Time `json:"asOf"`

	// Catalog
	TotalTitles      int `json:"totalTitles"`
	TotalCopies      int `json:"totalCopies"`
	AvailableCopies  int `json:"availableCopies"`
	OutOfStockTitles int `json:"outOfStockTitles"`

	// Ledger
	ActiveLoans      int             `json:"activeLoans"`
	OverdueLoans     int             `json:"overdueLoans"`
	ReturnedLoans    int             `json:"returnedLoans"`
	OutstandingFines decimal.Decimal `json:"outstandingFines"`
	CollectedFines   decimal.Decimal `json:"collectedFines"`

	ByBorrowerType map[string]*BorrowerStats `json:"byBorrowerType"`

	// Registry
	TotalStudents int64 `json:"totalStudents"`
	TotalTeachers int64 `json:"totalTeachers"`
	TotalStaff    int64 `json:"totalStaff"`

	LastReconciliation *time.Time `json:"lastReconciliation"`
}

// GetDashboard returns the dashboard of schoolName
func (s *DashboardService) GetDashboard(ctx context.Context, schoolName string) (*DashboardData, error) {
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}

	asOf := s.now()
	data := &DashboardData{
		SchoolName:       schoolName,
		AsOf:             asOf,
		OutstandingFines: decimal.Zero,
		CollectedFines:   decimal.Zero,
		ByBorrowerType: map[string]*BorrowerStats{
			string(domain.BorrowerStudent): {Fines: decimal.Zero},
			string(domain.BorrowerTeacher): {Fines: decimal.Zero},
		},
	}

	books, err := s.bookRepo.ListBySchool(ctx, schoolName)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		data.TotalTitles++
		data.TotalCopies += b.Quantity
		data.AvailableCopies += b.AvailableQuantity
		if b.Status == string(domain.BookOutOfStock) {
			data.OutOfStockTitles++
		}
	}

	loans, err := s.loanRepo.List(ctx, repositories.LoanFilter{SchoolName: schoolName})
	if err != nil {
		return nil, err
	}
	policy := s.cfg.FinePolicyFor(schoolName)
	for _, l := range loans {
		status := domain.DeriveLoanStatus(l.ReturnDate, l.DueDate, asOf)
		if status == domain.LoanReturned {
			data.ReturnedLoans++
			data.CollectedFines = data.CollectedFines.Add(l.Fine)
			continue
		}

		fine := policy.Accrue(l.Fine, l.DueDate, asOf)
		data.ActiveLoans++
		data.OutstandingFines = data.OutstandingFines.Add(fine)
		if status == domain.LoanOverdue {
			data.OverdueLoans++
		}

		if stats, ok := data.ByBorrowerType[l.BorrowerType]; ok {
			stats.Active++
			stats.Fines = stats.Fines.Add(fine)
			if status == domain.LoanOverdue {
				stats.Overdue++
			}
		}
	}

	if err := s.db.WithContext(ctx).Model(&models.Student{}).Where("school_name = ?", schoolName).Count(&data.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Teacher{}).Where("school_name = ?", schoolName).Count(&data.TotalTeachers).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("school_name = ?", schoolName).Count(&data.TotalStaff).Error; err != nil {
		return nil, err
	}

	var last models.ReconciliationRun
	if err := s.db.WithContext(ctx).
		Where("school_name = ?", schoolName).
		Order("finished_at DESC").
		Limit(1).
		Find(&last).Error; err == nil && last.ID != 0 {
		data.LastReconciliation = &last.FinishedAt
	}

	return data, nil
}
