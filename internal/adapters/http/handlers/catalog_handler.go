package handlers

import (
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles book endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListBooks returns one page of a school's catalog
// @Summary List books
// @Description Paginated catalog with title/author/isbn search and category filter
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search in title, author and isbn"
// @Param category query string false "Exact category"
// @Success 200 {object} services.BookPage
// @Failure 403 {object} response.Response
// @Router /Books/{schoolName} [get]
func (h *CatalogHandler) ListBooks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.catalogService.List(c.Context(), c.Params("schoolName"), &services.ListBooksInput{
		Page:     params.Page,
		Limit:    params.Limit,
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"data":       result.Books,
		"pagination": result.Pagination,
	})
}

// ListCategories returns the categories in use
// @Summary List categories
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} response.Response
// @Router /Books/{schoolName}/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.Categories(c.Context(), c.Params("schoolName"))
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "", categories)
}

// GetBook gets a book by ID
// @Summary Get book
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response{data=models.BookResponse}
// @Failure 404 {object} response.Response
// @Router /Book/{id} [get]
func (h *CatalogHandler) GetBook(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.catalogService.Get(c.Context(), middleware.CurrentSchool(c), id)
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "", book)
}

// CreateBook adds a title to the catalog
// @Summary Create book
// @Description Every copy starts on the shelf
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Response{data=models.BookResponse}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /Book [post]
func (h *CatalogHandler) CreateBook(c *fiber.Ctx) error {
	var req services.CreateBookInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	school, err := tenantOf(c, req.SchoolName)
	if err != nil {
		return writeError(c, err)
	}
	req.SchoolName = school

	if ok, err := validBody(c, &req); !ok {
		return err
	}

	book, err := h.catalogService.Create(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Created(c, "Book created successfully", book)
}

// UpdateBook applies a partial edit
// @Summary Update book
// @Description Availability follows a quantity change unless set explicitly
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.UpdateBookInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.BookResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /Book/{id} [put]
func (h *CatalogHandler) UpdateBook(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req services.UpdateBookInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	book, err := h.catalogService.Update(c.Context(), middleware.CurrentSchool(c), id, &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "Book updated successfully", book)
}

// DeleteBook removes a book no open loan references
// @Summary Delete book
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /Book/{id} [delete]
func (h *CatalogHandler) DeleteBook(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.catalogService.Delete(c.Context(), middleware.CurrentSchool(c), id); err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "Book deleted successfully", nil)
}
