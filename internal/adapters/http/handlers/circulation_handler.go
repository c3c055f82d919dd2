package handlers

import (
	"strconv"
	"time"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CirculationHandler handles book loan endpoints
type CirculationHandler struct {
	circulationService *services.CirculationService
}

// NewCirculationHandler creates a new circulation handler
func NewCirculationHandler(circulationService *services.CirculationService) *CirculationHandler {
	return &CirculationHandler{
		circulationService: circulationService,
	}
}

// IssueRequest represents the issue request body. borrowerType + borrowerId is
// the canonical shape; studentId or teacherId alone are still accepted.
type IssueRequest struct {
	SchoolName   string `json:"schoolName"`
	BookID       uint   `json:"bookId"`
	BorrowerType string `json:"borrowerType"`
	BorrowerID   uint   `json:"borrowerId"`
	StudentID    uint   `json:"studentId,omitempty"`
	TeacherID    uint   `json:"teacherId,omitempty"`
	DueDate      string `json:"dueDate"`
	Notes        string `json:"notes" validate:"max=1000"`
	LibrarianID  uint   `json:"librarianId"`
}

// borrower folds the legacy studentId/teacherId fields into the tagged pair
func (r *IssueRequest) borrower() (string, uint, error) {
	if r.BorrowerID != 0 {
		return r.BorrowerType, r.BorrowerID, nil
	}

	switch {
	case r.StudentID != 0 && r.TeacherID != 0:
		t, err := domain.ParseBorrowerType(r.BorrowerType)
		if err != nil {
			return "", 0, domain.Invalidf("borrowerType is required when both studentId and teacherId are sent")
		}
		if t == domain.BorrowerTeacher {
			return string(t), r.TeacherID, nil
		}
		return string(t), r.StudentID, nil
	case r.StudentID != 0:
		return string(domain.BorrowerStudent), r.StudentID, nil
	case r.TeacherID != 0:
		return string(domain.BorrowerTeacher), r.TeacherID, nil
	}
	return r.BorrowerType, 0, nil
}

// ReturnRequest represents the return request body
type ReturnRequest struct {
	ReturnDate string `json:"returnDate"`
}

// Issue lends one copy of a book
// @Summary Issue book
// @Description Decrements availability and opens a loan atomically
// @Tags BookLoans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IssueRequest true "Loan data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /BookLoan/issue [post]
func (h *CirculationHandler) Issue(c *fiber.Ctx) error {
	var req IssueRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	school, err := tenantOf(c, req.SchoolName)
	if err != nil {
		return writeError(c, err)
	}
	borrowerType, borrowerID, err := req.borrower()
	if err != nil {
		return writeError(c, err)
	}

	var due time.Time
	if req.DueDate != "" {
		if due, err = parseDate(req.DueDate); err != nil {
			return writeError(c, err)
		}
	}

	librarianID := req.LibrarianID
	if librarianID == 0 {
		librarianID = middleware.CurrentUserID(c)
	}

	loan, err := h.circulationService.Issue(c.Context(), &services.IssueInput{
		SchoolName:   school,
		BookID:       req.BookID,
		BorrowerType: borrowerType,
		BorrowerID:   borrowerID,
		DueDate:      due,
		Notes:        req.Notes,
		LibrarianID:  librarianID,
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return response.OK(c, fiber.Map{
		"message":  "Book issued successfully",
		"bookLoan": loan,
	})
}

// Return closes a loan
// @Summary Return book
// @Description Freezes the fine and puts the copy back on the shelf
// @Tags BookLoans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body ReturnRequest false "Return date, defaults to now"
// @Success 200 {object} services.ReturnResult
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /BookLoan/{id}/return [put]
func (h *CirculationHandler) Return(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book loan ID")
	}

	var req ReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	var returnDate *time.Time
	if req.ReturnDate != "" {
		t, err := parseDate(req.ReturnDate)
		if err != nil {
			return writeError(c, err)
		}
		returnDate = &t
	}

	result, err := h.circulationService.Return(c.Context(), middleware.CurrentSchool(c), id, returnDate)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"message":    "Book returned successfully",
		"returnDate": result.ReturnDate,
		"fine":       result.Fine,
		"bookLoan":   result.Loan,
	})
}

// Delete removes a loan record
// @Summary Delete book loan
// @Description Availability is left alone unless the server restores on delete; use restore-availability to repair
// @Tags BookLoans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} services.DeleteLoanResult
// @Failure 404 {object} response.Response
// @Router /BookLoan/{id} [delete]
func (h *CirculationHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book loan ID")
	}

	result, err := h.circulationService.DeleteLoan(c.Context(), middleware.CurrentSchool(c), id)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"message":              "Book loan deleted successfully",
		"wasActive":            result.WasActive,
		"availabilityRestored": result.AvailabilityRestored,
	})
}

// Get returns one loan
// @Summary Get book loan
// @Tags BookLoans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response{data=models.BookLoanResponse}
// @Failure 404 {object} response.Response
// @Router /BookLoan/{id} [get]
func (h *CirculationHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book loan ID")
	}

	loan, err := h.circulationService.GetLoan(c.Context(), middleware.CurrentSchool(c), id)
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "", loan)
}

// List returns the loans of a school, newest first
// @Summary List book loans
// @Tags BookLoans
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Param status query string false "borrowed | overdue | returned"
// @Param borrowerType query string false "student | teacher"
// @Success 200 {object} response.Response{data=[]models.BookLoanResponse}
// @Router /BookLoans/{schoolName} [get]
func (h *CirculationHandler) List(c *fiber.Ctx) error {
	return h.list(c, c.Query("borrowerType"))
}

// ListStudents returns the student loans of a school
// @Summary List student book loans
// @Tags BookLoans
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Param status query string false "borrowed | overdue | returned"
// @Success 200 {object} response.Response{data=[]models.BookLoanResponse}
// @Router /BookLoans/{schoolName}/students [get]
func (h *CirculationHandler) ListStudents(c *fiber.Ctx) error {
	return h.list(c, string(domain.BorrowerStudent))
}

// ListTeachers returns the teacher loans of a school
// @Summary List teacher book loans
// @Tags BookLoans
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Param status query string false "borrowed | overdue | returned"
// @Success 200 {object} response.Response{data=[]models.BookLoanResponse}
// @Router /BookLoans/{schoolName}/teachers [get]
func (h *CirculationHandler) ListTeachers(c *fiber.Ctx) error {
	return h.list(c, string(domain.BorrowerTeacher))
}

func (h *CirculationHandler) list(c *fiber.Ctx, borrowerType string) error {
	loans, err := h.circulationService.ListLoans(c.Context(), c.Params("schoolName"), services.LoanQuery{
		BorrowerType: borrowerType,
		Status:       c.Query("status"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"data": loans,
	})
}

// Cleanup removes loans whose book or borrower no longer exists
// @Summary Cleanup orphaned loans
// @Tags Reconciliation
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} services.CleanupResult
// @Router /BookLoans/{schoolName}/cleanup [post]
func (h *CirculationHandler) Cleanup(c *fiber.Ctx) error {
	result, err := h.circulationService.CleanupOrphanedLoans(c.Context(), c.Params("schoolName"), middleware.CurrentUsername(c))
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"cleanedCount": result.CleanedCount,
		"details":      result.Details,
		"runId":        result.RunID,
	})
}

// RestoreAvailability recounts every book of a school
// @Summary Restore availability
// @Description availableQuantity = quantity - active loans for every book. Also served as fix-availability.
// @Tags Reconciliation
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} services.RestoreResult
// @Router /BookLoans/{schoolName}/restore-availability [post]
func (h *CirculationHandler) RestoreAvailability(c *fiber.Ctx) error {
	result, err := h.circulationService.RestoreAvailability(c.Context(), c.Params("schoolName"), middleware.CurrentUsername(c))
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"restoredCount": result.RestoredCount,
		"details":       result.Details,
		"runId":         result.RunID,
	})
}

// RefreshOverdue persists overdue status and fines now instead of waiting for the job
// @Summary Refresh overdue loans
// @Tags Reconciliation
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} map[string]interface{}
// @Router /BookLoans/{schoolName}/refresh-overdue [post]
func (h *CirculationHandler) RefreshOverdue(c *fiber.Ctx) error {
	updated, err := h.circulationService.RefreshOverdue(c.Context(), c.Params("schoolName"))
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"updatedCount": updated,
	})
}

// ListRuns returns the latest repair runs
// @Summary List reconciliation runs
// @Tags Reconciliation
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Param limit query int false "How many runs" default(20)
// @Success 200 {object} response.Response{data=[]models.ReconciliationRun}
// @Router /BookLoans/{schoolName}/reconciliation-runs [get]
func (h *CirculationHandler) ListRuns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	runs, err := h.circulationService.ListRuns(c.Context(), c.Params("schoolName"), limit)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, fiber.Map{
		"data": runs,
	})
}
