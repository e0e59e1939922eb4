package handlers

import (
	"errors"
	"strconv"
	"strings"

	"clubledger/internal/core/services"
	"clubledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BalanceHandler handles balance and notification preview endpoints
type BalanceHandler struct {
	balanceService *services.BalanceService
	memberService  *services.MemberService
	notifyService  *services.NotificationService
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(
	balanceService *services.BalanceService,
	memberService *services.MemberService,
	notifyService *services.NotificationService,
) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		memberService:  memberService,
		notifyService:  notifyService,
	}
}

// GetMemberBalance gets one member's balance
// @Summary Get member balance
// @Description Get a member's balance computed from the full ledger (Treasurer or Admin)
// @Tags Balances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /balances/members/{id} [get]
func (h *BalanceHandler) GetMemberBalance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	balance, err := h.balanceService.GetMemberBalance(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		default:
			return persistenceError(c, err, "Failed to get member balance")
		}
	}

	return response.Success(c, "Member balance retrieved successfully", fiber.Map{
		"balance": balance,
	})
}

// GetAllBalances gets balances for the whole club or a selection
// @Summary Get all member balances
// @Description Get balances for all club members, or only those in member_ids, from one ledger snapshot (Treasurer or Admin)
// @Tags Balances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member_ids query string false "Comma-separated member IDs"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /balances [get]
func (h *BalanceHandler) GetAllBalances(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var memberIDs []uint
	if raw := c.Query("member_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return response.BadRequest(c, "Invalid member_ids parameter")
			}
			memberIDs = append(memberIDs, uint(id))
		}
	}

	balances, err := h.balanceService.GetAllMembersBalances(c.Context(), clubID, memberIDs)
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			return response.NotFound(c, "Club not found")
		}
		return persistenceError(c, err, "Failed to get member balances")
	}

	return response.Success(c, "Member balances retrieved successfully", fiber.Map{
		"balances": balances,
		"total":    len(balances),
	})
}

// GetBalanceMessage previews the notification text for a member
// @Summary Preview balance message
// @Description Compose the balance notification text for a member without sending anything (Treasurer or Admin)
// @Tags Balances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /balances/members/{id}/message [get]
func (h *BalanceHandler) GetBalanceMessage(c *fiber.Ctx) error {
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

	balance, err := h.balanceService.GetMemberBalance(c.Context(), member.ID)
	if err != nil {
		return persistenceError(c, err, "Failed to get member balance")
	}

	message := h.notifyService.ComposeBalanceMessage(balance, member.FullName)

	return response.Success(c, "Balance message composed successfully", fiber.Map{
		"message": message,
		"balance": balance,
	})
}
