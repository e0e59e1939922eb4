package handlers

import (
	"errors"
	"strconv"

	"clubledger/internal/core/domain"
	"clubledger/internal/core/services"
	"clubledger/internal/pkg/pagination"
	"clubledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles club roster endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// callerClubID reads the club scope set by the auth middleware
func callerClubID(c *fiber.Ctx) (uint, bool) {
	clubID, ok := c.Locals("clubID").(uint)
	return clubID, ok && clubID != 0
}

// persistenceError answers 503 when the storage backend failed and 500
// for anything else
func persistenceError(c *fiber.Ctx, err error, message string) error {
	if domain.IsStorageError(err) {
		return response.ServiceUnavailable(c, "Storage backend unavailable, please retry")
	}
	return response.InternalServerError(c, message)
}

// ListMembers lists the club's roster
// @Summary List members
// @Description Get a paginated list of the club's members (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	members, total, err := h.memberService.ListByClub(c.Context(), clubID, params.Page, params.Limit)
	if err != nil {
		return persistenceError(c, err, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", fiber.Map{
		"members": members,
		"meta":    pagination.GetMeta(params, total),
	})
}

// ListEligibleMembers lists active confirmed members
// @Summary List eligible members
// @Description Get the members currently eligible for billing (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /members/eligible [get]
func (h *MemberHandler) ListEligibleMembers(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	members, err := h.memberService.ListEligible(c.Context(), clubID)
	if err != nil {
		return persistenceError(c, err, "Failed to list eligible members")
	}

	return response.Success(c, "Eligible members retrieved successfully", fiber.Map{
		"members": members,
		"total":   len(members),
	})
}

// GetMember gets a member by ID
// @Summary Get member
// @Description Get a roster member by ID (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return persistenceError(c, err, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": member,
	})
}

// CreateMemberRequest represents create member request
type CreateMemberRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

// CreateMember adds a member to the roster
// @Summary Create member
// @Description Add a member to the club roster (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	input := &services.CreateMemberInput{
		FullName: req.FullName,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
	}

	member, err := h.memberService.Create(c.Context(), clubID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		case errors.Is(err, services.ErrMemberEmailTaken):
			return response.Conflict(c, "Email already on the roster")
		default:
			return persistenceError(c, err, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member,
	})
}

// UpdateMemberRequest represents update member request
type UpdateMemberRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Whatsapp *string `json:"whatsapp"`
	IsActive *bool   `json:"is_active"`
}

// UpdateMember updates a roster member
// @Summary Update member
// @Description Update a roster member (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body UpdateMemberRequest true "Member data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateMemberInput{
		FullName: req.FullName,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
		IsActive: req.IsActive,
	}

	member, err := h.memberService.Update(c.Context(), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberEmailTaken):
			return response.Conflict(c, "Email already on the roster")
		default:
			return persistenceError(c, err, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member,
	})
}

// SetApprovalRequest represents approval status request
type SetApprovalRequest struct {
	Status string `json:"status"`
}

// SetApproval sets a member's approval status
// @Summary Set approval status
// @Description Confirm or reject a pending member (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body SetApprovalRequest true "Approval data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/approval [put]
func (h *MemberHandler) SetApproval(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req SetApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.SetApproval(c.Context(), uint(id), &services.SetApprovalInput{
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrInvalidApproval):
			return response.BadRequest(c, "Status must be PENDING, CONFIRMED, or REJECTED")
		default:
			return persistenceError(c, err, "Failed to set approval status")
		}
	}

	return response.Success(c, "Approval status updated successfully", fiber.Map{
		"member": member,
	})
}

// DeleteMember removes a member from the roster
// @Summary Delete member
// @Description Remove a member from the roster (Treasurer or Admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return persistenceError(c, err, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}
