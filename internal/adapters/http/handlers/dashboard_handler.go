package handlers

import (
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the circulation overview of a school
// @Summary School dashboard
// @Description Catalog, ledger and fine totals of one school
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param schoolName path string true "School"
// @Success 200 {object} response.Response{data=services.DashboardData}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /Dashboard/{schoolName} [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.Context(), c.Params("schoolName"))
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
