package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/pagination"

	"gorm.io/gorm"
)

// CatalogService handles direct CRUD of books
type CatalogService struct {
	db       *gorm.DB
	bookRepo *repositories.BookRepository
	loanRepo *repositories.LoanRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	db *gorm.DB,
	bookRepo *repositories.BookRepository,
	loanRepo *repositories.LoanRepository,
) *CatalogService {
	return &CatalogService{
		db:       db,
		bookRepo: bookRepo,
		loanRepo: loanRepo,
	}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	SchoolName string `json:"schoolName" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Author     string `json:"author" validate:"required"`
	ISBN       string `json:"isbn" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
}

// UpdateBookInput is a partial book; nil fields are left alone
type UpdateBookInput struct {
	Title             *string `json:"title"`
	Author            *string `json:"author"`
	ISBN              *string `json:"isbn"`
	Category          *string `json:"category"`
	Quantity          *int    `json:"quantity"`
	AvailableQuantity *int    `json:"availableQuantity"`
	Status            *string `json:"status"`
}

// ListBooksInput represents catalog listing input
type ListBooksInput struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// BookPage is one page of the catalog
type BookPage struct {
	Books      []*models.BookResponse `json:"data"`
	Pagination *pagination.Meta       `json:"pagination"`
}

// Create adds a title with every copy on the shelf
func (s *CatalogService) Create(ctx context.Context, input *CreateBookInput) (*models.BookResponse, error) {
	book := &models.Book{
		SchoolName: strings.TrimSpace(input.SchoolName),
		Title:      strings.TrimSpace(input.Title),
		Author:     strings.TrimSpace(input.Author),
		ISBN:       strings.TrimSpace(input.ISBN),
		Category:   strings.TrimSpace(input.Category),
		Quantity:   input.Quantity,
	}

	if book.SchoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	required := []struct{ field, value string }{
		{"title", book.Title},
		{"author", book.Author},
		{"isbn", book.ISBN},
		{"category", book.Category},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, domain.Invalidf("%s is required", r.field)
		}
	}
	if book.Quantity < 1 {
		return nil, domain.ErrQuantityRequired
	}

	book.AvailableQuantity = book.Quantity
	book.Status = string(domain.BookAvailable)

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book created: #%d %q (%s, %d copies)", book.ID, book.Title, book.SchoolName, book.Quantity)
	return book.ToResponse(), nil
}

// Get gets a book of schoolName by ID
func (s *CatalogService) Get(ctx context.Context, schoolName string, id uint) (*models.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrBookNotFound)
	}
	if book.SchoolName != schoolName {
		return nil, domain.ErrBookNotFound
	}
	return book.ToResponse(), nil
}

// List returns one page of the catalog of schoolName
func (s *CatalogService) List(ctx context.Context, schoolName string, input *ListBooksInput) (*BookPage, error) {
	if schoolName == "" {
		return nil, domain.ErrSchoolRequired
	}

	params := pagination.New(input.Page, input.Limit)

	books, total, err := s.bookRepo.List(ctx, repositories.BookFilter{
		SchoolName: schoolName,
		Search:     input.Search,
		Category:   input.Category,
	}, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]*models.BookResponse, len(books))
	for i, b := range books {
		data[i] = b.ToResponse()
	}

	return &BookPage{
		Books:      data,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// Categories lists the categories in use by schoolName
func (s *CatalogService) Categories(ctx context.Context, schoolName string) ([]string, error) {
	return s.bookRepo.Categories(ctx, schoolName)
}

// Update applies a librarian edit. Availability follows a quantity change
// unless set explicitly, and status is re-derived from the result.
func (s *CatalogService) Update(ctx context.Context, schoolName string, id uint, input *UpdateBookInput) (*models.BookResponse, error) {
	var updated *models.Book

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		book, err := books.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrBookNotFound)
		}
		if book.SchoolName != schoolName {
			return domain.ErrBookNotFound
		}

		if err := applyText(&book.Title, input.Title, "title"); err != nil {
			return err
		}
		if err := applyText(&book.Author, input.Author, "author"); err != nil {
			return err
		}
		if err := applyText(&book.ISBN, input.ISBN, "isbn"); err != nil {
			return err
		}
		if err := applyText(&book.Category, input.Category, "category"); err != nil {
			return err
		}

		quantity := book.Quantity
		if input.Quantity != nil {
			quantity = *input.Quantity
		}

		available := book.AvailableQuantity
		switch {
		case input.AvailableQuantity != nil:
			available = *input.AvailableQuantity
		case quantity != book.Quantity:
			available += quantity - book.Quantity
			if available < 0 {
				available = 0
			}
			if available > quantity {
				available = quantity
			}
		}

		if quantity < 0 || available < 0 {
			return domain.ErrNegativeQuantity
		}
		if available > quantity {
			return domain.ErrAvailableExceeds
		}

		status := domain.BookStatus(book.Status)
		if input.Status != nil {
			status, err = domain.ParseBookStatus(*input.Status)
			if err != nil {
				return err
			}
		}

		book.Quantity = quantity
		book.AvailableQuantity = available
		book.Status = string(domain.DeriveBookStatus(status, available))

		if err := books.Update(ctx, book); err != nil {
			return err
		}

		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Book updated: #%d (%d/%d, %s)", updated.ID, updated.AvailableQuantity, updated.Quantity, updated.Status)
	return updated.ToResponse(), nil
}

// Delete removes a book that no open loan references
func (s *CatalogService) Delete(ctx context.Context, schoolName string, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		book, err := books.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrBookNotFound)
		}
		if book.SchoolName != schoolName {
			return domain.ErrBookNotFound
		}

		active, err := s.loanRepo.WithTx(tx).CountActiveByBook(ctx, schoolName, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrBookHasActiveLoans
		}

		return books.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Book deleted: #%d (%s)", id, schoolName)
	return nil
}

func applyText(dst *string, value *string, field string) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return domain.Invalidf("%s cannot be empty", field)
	}
	*dst = v
	return nil
}

// notFoundAs swaps gorm's not-found for a domain error
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
