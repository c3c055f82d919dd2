package viewmodel

import (
	"context"
	"sync"

	"libraryhub/internal/adapters/client"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
)

// BookCounters are the totals of the loaded catalog page
type BookCounters struct {
	Titles     int
	Copies     int
	Available  int
	OutOfStock int
}

// BookPanel is one page of a school's catalog
type BookPanel struct {
	api        BookAPI
	schoolName string

	mu         sync.RWMutex
	query      client.BookQuery
	books      []*models.BookResponse
	pagination pagination.Meta
	notice     *Notice
}

// NewBookPanel creates a panel for schoolName
func NewBookPanel(api BookAPI, schoolName string) *BookPanel {
	return &BookPanel{api: api, schoolName: schoolName}
}

// Load fetches one page and remembers the query for Reload
func (p *BookPanel) Load(ctx context.Context, page int, search, category string) error {
	q := client.BookQuery{Page: page, Limit: pagination.DefaultLimit, Search: search, Category: category}

	result, err := p.api.ListBooks(ctx, p.schoolName, q)
	if err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.query = q
	p.books = result.Books
	if result.Pagination != nil {
		p.pagination = *result.Pagination
	}
	return nil
}

// Reload fetches the last loaded page again
func (p *BookPanel) Reload(ctx context.Context) error {
	p.mu.RLock()
	q := p.query
	p.mu.RUnlock()
	return p.Load(ctx, q.Page, q.Search, q.Category)
}

// Books returns the loaded page
func (p *BookPanel) Books() []*models.BookResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*models.BookResponse(nil), p.books...)
}

// Pagination returns the pagination block of the loaded page
func (p *BookPanel) Pagination() pagination.Meta {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pagination
}

// Counters aggregates the loaded page
func (p *BookPanel) Counters() BookCounters {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c := BookCounters{Titles: len(p.books)}
	for _, b := range p.books {
		c.Copies += b.Quantity
		c.Available += b.AvailableQuantity
		if domain.BookStatus(b.Status) == domain.BookOutOfStock {
			c.OutOfStock++
		}
	}
	return c
}

// Create adds a title and appends it to the loaded page
func (p *BookPanel) Create(ctx context.Context, input services.CreateBookInput) (*models.BookResponse, error) {
	if input.SchoolName == "" {
		input.SchoolName = p.schoolName
	}

	book, err := p.api.CreateBook(ctx, input)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	p.mu.Lock()
	p.books = append(p.books, book)
	p.pagination.TotalBooks++
	p.mu.Unlock()
	return book, nil
}

// Update edits a title and swaps in the server's record
func (p *BookPanel) Update(ctx context.Context, id uint, input services.UpdateBookInput) (*models.BookResponse, error) {
	book, err := p.api.UpdateBook(ctx, id, input)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	p.mu.Lock()
	for i, b := range p.books {
		if b.ID == id {
			p.books[i] = book
			break
		}
	}
	p.mu.Unlock()
	return book, nil
}

// Delete removes a title
func (p *BookPanel) Delete(ctx context.Context, id uint) error {
	if err := p.api.DeleteBook(ctx, id); err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i, b := range p.books {
		if b.ID == id {
			p.books = append(p.books[:i:i], p.books[i+1:]...)
			p.pagination.TotalBooks--
			break
		}
	}
	return nil
}

// Notice returns the pending notice, nil when there is none
func (p *BookPanel) Notice() *Notice {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.notice
}

// DismissNotice clears the pending notice
func (p *BookPanel) DismissNotice() {
	p.mu.Lock()
	p.notice = nil
	p.mu.Unlock()
}

func (p *BookPanel) fail(err error) {
	p.mu.Lock()
	p.notice = errorNotice(err)
	p.mu.Unlock()
}
