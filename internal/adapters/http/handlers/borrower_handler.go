package handlers

import (
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowerHandler handles student and teacher endpoints
type BorrowerHandler struct {
	borrowerService *services.BorrowerService
}

// NewBorrowerHandler creates a new borrower handler
func NewBorrowerHandler(borrowerService *services.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{
		borrowerService: borrowerService,
	}
}

// CreateStudent registers a student
// @Summary Create student
// @Tags Borrowers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateStudentInput true "Student"
// @Success 201 {object} response.Response
// @Router /Student [post]
func (h *BorrowerHandler) CreateStudent(c *fiber.Ctx) error {
	var req services.CreateStudentInput
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

	student, err := h.borrowerService.CreateStudent(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Created(c, "Student created successfully", student)
}

// CreateTeacher registers a teacher
// @Summary Create teacher
// @Tags Borrowers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateTeacherInput true "Teacher"
// @Success 201 {object} response.Response
// @Router /Teacher [post]
func (h *BorrowerHandler) CreateTeacher(c *fiber.Ctx) error {
	var req services.CreateTeacherInput
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

	teacher, err := h.borrowerService.CreateTeacher(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Created(c, "Teacher created successfully", teacher)
}

// ListStudents lists the students of a school
// @Summary List students
// @Tags Borrowers
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} response.Response
// @Router /Students/{schoolName} [get]
func (h *BorrowerHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.borrowerService.ListStudents(c.Context(), c.Params("schoolName"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "", students)
}

// ListTeachers lists the teachers of a school
// @Summary List teachers
// @Tags Borrowers
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} response.Response
// @Router /Teachers/{schoolName} [get]
func (h *BorrowerHandler) ListTeachers(c *fiber.Ctx) error {
	teachers, err := h.borrowerService.ListTeachers(c.Context(), c.Params("schoolName"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "", teachers)
}

// DeleteStudent removes a student. Their loans stay and become orphans.
// @Summary Delete student
// @Tags Borrowers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /Student/{id} [delete]
func (h *BorrowerHandler) DeleteStudent(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid student ID")
	}
	if err := h.borrowerService.DeleteStudent(c.Context(), middleware.CurrentSchool(c), id); err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Student deleted successfully", nil)
}

// DeleteTeacher removes a teacher. Their loans stay and become orphans.
// @Summary Delete teacher
// @Tags Borrowers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /Teacher/{id} [delete]
func (h *BorrowerHandler) DeleteTeacher(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid teacher ID")
	}
	if err := h.borrowerService.DeleteTeacher(c.Context(), middleware.CurrentSchool(c), id); err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Teacher deleted successfully", nil)
}
