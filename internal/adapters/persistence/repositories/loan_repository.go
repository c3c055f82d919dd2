package repositories

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanRepository handles book loan data access
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *LoanRepository) WithTx(tx *gorm.DB) *LoanRepository {
	return &LoanRepository{db: tx}
}

// LoanFilter narrows a ledger listing
type LoanFilter struct {
	SchoolName   string
	BorrowerType string
	ActiveOnly   bool
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.BookLoan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.BookLoan, error) {
	var loan models.BookLoan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetForUpdate loads a loan and holds its row lock until the transaction ends
func (r *LoanRepository) GetForUpdate(ctx context.Context, id uint) (*models.BookLoan, error) {
	var loan models.BookLoan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans of a school, newest first
func (r *LoanRepository) List(ctx context.Context, f LoanFilter) ([]*models.BookLoan, error) {
	var loans []*models.BookLoan

	query := r.db.WithContext(ctx).Where("school_name = ?", f.SchoolName)
	if f.BorrowerType != "" {
		query = query.Where("borrower_type = ?", f.BorrowerType)
	}
	if f.ActiveOnly {
		query = query.Where("return_date IS NULL")
	}

	err := query.Order("issue_date DESC, id DESC").Find(&loans).Error
	return loans, err
}

// MarkReturned closes an open loan. Returns false if it was already closed.
func (r *LoanRepository) MarkReturned(ctx context.Context, id uint, returnDate time.Time, fine decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BookLoan{}).
		Where("id = ? AND return_date IS NULL", id).
		Updates(map[string]interface{}{
			"return_date": returnDate,
			"status":      "returned",
			"fine":        fine,
		})
	return res.RowsAffected == 1, res.Error
}

// UpdateAccrual persists status and fine of an open loan
func (r *LoanRepository) UpdateAccrual(ctx context.Context, id uint, status string, fine decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BookLoan{}).
		Where("id = ? AND return_date IS NULL", id).
		Updates(map[string]interface{}{
			"status": status,
			"fine":   fine,
		})
	return res.RowsAffected == 1, res.Error
}

// Delete permanently removes a loan
func (r *LoanRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.BookLoan{}, id)
	return res.RowsAffected == 1, res.Error
}

// CountActiveByBook counts open loans of schoolName referencing bookID
func (r *LoanRepository) CountActiveByBook(ctx context.Context, schoolName string, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BookLoan{}).
		Where("school_name = ? AND book_id = ? AND return_date IS NULL", schoolName, bookID).
		Count(&count).Error
	return count, err
}

// SchoolNames lists every tenant that owns books or loans
func (r *LoanRepository) SchoolNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Raw(
		"SELECT school_name FROM books WHERE deleted_at IS NULL " +
			"UNION SELECT school_name FROM book_loans ORDER BY school_name",
	).Scan(&names).Error
	return names, err
}

// ReconciliationRepository stores repair job audit rows
type ReconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation repository
func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// Create stores one run
func (r *ReconciliationRepository) Create(ctx context.Context, run *models.ReconciliationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// ListBySchool lists the latest runs of a school
func (r *ReconciliationRepository) ListBySchool(ctx context.Context, schoolName string, limit int) ([]*models.ReconciliationRun, error) {
	var runs []*models.ReconciliationRun
	err := r.db.WithContext(ctx).
		Where("school_name = ?", schoolName).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
