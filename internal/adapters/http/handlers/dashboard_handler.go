package handlers

import (
	"errors"
	"strconv"

	"clubledger/internal/core/services"
	"clubledger/internal/pkg/response"

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

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Get admin dashboard with system overview (Admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return persistenceError(c, err, "Failed to get admin dashboard")
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// GetTreasuryDashboard returns the caller's club treasury overview
// @Summary Treasury Dashboard
// @Description Get the club's financial overview (Treasurer or Admin)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/treasury [get]
func (h *DashboardHandler) GetTreasuryDashboard(c *fiber.Ctx) error {
	clubID, ok := c.Locals("clubID").(uint)
	if !ok || clubID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetTreasuryDashboard(c.Context(), clubID)
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			return response.NotFound(c, "Club not found")
		}
		return persistenceError(c, err, "Failed to get treasury dashboard")
	}

	return response.Success(c, "Treasury dashboard retrieved successfully", data)
}

// GetMemberDashboard returns one member's dashboard by ID
// @Summary Member Dashboard by ID
// @Description Get a member's balance and recent activity (Treasurer or Admin)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /dashboard/members/{id} [get]
func (h *DashboardHandler) GetMemberDashboard(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	data, err := h.dashboardService.GetMemberDashboard(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		default:
			return persistenceError(c, err, "Failed to get member dashboard")
		}
	}

	return response.Success(c, "Member dashboard retrieved successfully", data)
}

// GetMyDashboard returns dashboard based on user role
// @Summary My Dashboard
// @Description Get dashboard based on current user's role (auto-detect)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	// Get role from context
	role, _ := c.Locals("role").(string)
	userID, _ := c.Locals("userID").(uint)
	clubID, _ := c.Locals("clubID").(uint)

	var data interface{}
	var err error

	switch role {
	case "ADMIN":
		data, err = h.dashboardService.GetAdminDashboard(c.Context())
	case "TREASURER":
		data, err = h.dashboardService.GetTreasuryDashboard(c.Context(), clubID)
	default:
		data, err = h.dashboardService.GetMyMemberDashboard(c.Context(), userID)
	}

	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "No roster entry found for your account")
		}
		return persistenceError(c, err, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", fiber.Map{
		"role": role,
		"data": data,
	})
}
