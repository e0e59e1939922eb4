package handlers

import (
	"errors"
	"strconv"

	"clubledger/internal/core/services"
	"clubledger/internal/pkg/pagination"
	"clubledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClubHandler handles club management endpoints
type ClubHandler struct {
	clubService *services.ClubService
}

// NewClubHandler creates a new club handler
func NewClubHandler(clubService *services.ClubService) *ClubHandler {
	return &ClubHandler{
		clubService: clubService,
	}
}

// ListClubs lists all clubs
// @Summary List clubs
// @Description Get a paginated list of clubs (Admin only)
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /clubs [get]
func (h *ClubHandler) ListClubs(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	clubs, total, err := h.clubService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return persistenceError(c, err, "Failed to list clubs")
	}

	return response.Success(c, "Clubs retrieved successfully", fiber.Map{
		"clubs": clubs,
		"meta":  pagination.GetMeta(params, total),
	})
}

// GetClub gets a club by ID
// @Summary Get club
// @Description Get a club by ID
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/{id} [get]
func (h *ClubHandler) GetClub(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid club ID")
	}

	club, err := h.clubService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			return response.NotFound(c, "Club not found")
		}
		return persistenceError(c, err, "Failed to get club")
	}

	return response.Success(c, "Club retrieved successfully", fiber.Map{
		"club": club,
	})
}

// CreateClubRequest represents create club request
type CreateClubRequest struct {
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// CreateClub creates a new club
// @Summary Create club
// @Description Create a new club (Admin only)
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateClubRequest true "Club data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clubs [post]
func (h *ClubHandler) CreateClub(c *fiber.Ctx) error {
	var req CreateClubRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	input := &services.CreateClubInput{
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
	}

	club, err := h.clubService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNameTaken):
			return response.Conflict(c, "Club name already exists")
		case errors.Is(err, services.ErrInvalidCurrency):
			return response.BadRequest(c, "Currency code must be a 3-letter code")
		default:
			return persistenceError(c, err, "Failed to create club")
		}
	}

	return response.Created(c, "Club created successfully", fiber.Map{
		"club": club,
	})
}

// UpdateClubRequest represents update club request
type UpdateClubRequest struct {
	Name         *string `json:"name"`
	CurrencyCode *string `json:"currency_code"`
}

// UpdateClub updates a club
// @Summary Update club
// @Description Update a club (Admin only)
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param body body UpdateClubRequest true "Club data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/{id} [put]
func (h *ClubHandler) UpdateClub(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid club ID")
	}

	var req UpdateClubRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateClubInput{
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
	}

	club, err := h.clubService.Update(c.Context(), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		case errors.Is(err, services.ErrClubNameTaken):
			return response.Conflict(c, "Club name already exists")
		case errors.Is(err, services.ErrInvalidCurrency):
			return response.BadRequest(c, "Currency code must be a 3-letter code")
		default:
			return persistenceError(c, err, "Failed to update club")
		}
	}

	return response.Success(c, "Club updated successfully", fiber.Map{
		"club": club,
	})
}

// DeleteClub deletes a club
// @Summary Delete club
// @Description Delete a club (Admin only)
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/{id} [delete]
func (h *ClubHandler) DeleteClub(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid club ID")
	}

	if err := h.clubService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			return response.NotFound(c, "Club not found")
		}
		return persistenceError(c, err, "Failed to delete club")
	}

	return response.Success(c, "Club deleted successfully", nil)
}
