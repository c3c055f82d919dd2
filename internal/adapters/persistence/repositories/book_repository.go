package repositories

import (
	"context"
	"strings"

	"libraryhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookRepository handles book data access
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *BookRepository) WithTx(tx *gorm.DB) *BookRepository {
	return &BookRepository{db: tx}
}

// BookFilter narrows a catalog listing
type BookFilter struct {
	SchoolName string
	Search     string // title, author or isbn substring
	Category   string // exact match
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetForUpdate loads a book and holds its row lock until the transaction ends
func (r *BookRepository) GetForUpdate(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *BookRepository) filtered(ctx context.Context, f BookFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Book{}).Where("school_name = ?", f.SchoolName)

	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ?", like, like, like)
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	return query
}

// List lists books of a school with filters and pagination
func (r *BookRepository) List(ctx context.Context, f BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.filtered(ctx, f).
		Order("title ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// ListBySchool lists every book of a school
func (r *BookRepository) ListBySchool(ctx context.Context, schoolName string) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).
		Where("school_name = ?", schoolName).
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// Categories lists the distinct categories of a school
func (r *BookRepository) Categories(ctx context.Context, schoolName string) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("school_name = ?", schoolName).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Update saves every column of a book
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// SetAvailability writes availability and status only if the row still holds
// the expected available count. Returns false when it did not.
func (r *BookRepository) SetAvailability(ctx context.Context, id uint, expected, available int, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available_quantity = ?", id, expected).
		Updates(map[string]interface{}{
			"available_quantity": available,
			"status":             status,
		})
	return res.RowsAffected == 1, res.Error
}

// Delete soft deletes a book
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// ExistingIDs returns the ids that still resolve to a book of schoolName
func (r *BookRepository) ExistingIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var existing []uint
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("school_name = ? AND id IN ?", schoolName, ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, err
	}

	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

// ByIDs loads the books of schoolName with the given ids
func (r *BookRepository) ByIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]*models.Book, error) {
	books := make(map[uint]*models.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	var rows []*models.Book
	err := r.db.WithContext(ctx).
		Where("school_name = ? AND id IN ?", schoolName, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, b := range rows {
		books[b.ID] = b
	}
	return books, nil
}
