package handlers

import (
	"errors"
	"strconv"

	"clubledger/internal/core/domain"
	"clubledger/internal/core/services"
	"clubledger/internal/pkg/pagination"
	"clubledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// BillingHandler handles fee settings, fee generation, charges and
// payments
type BillingHandler struct {
	settingsService *services.FeeSettingsService
	feeService      *services.FeeGenerationService
	chargeService   *services.ChargeService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(
	settingsService *services.FeeSettingsService,
	feeService *services.FeeGenerationService,
	chargeService *services.ChargeService,
) *BillingHandler {
	return &BillingHandler{
		settingsService: settingsService,
		feeService:      feeService,
		chargeService:   chargeService,
	}
}

// ============================================================
// Fee Settings
// ============================================================

// GetFeeSettings gets the club's fee settings
// @Summary Get fee settings
// @Description Get the club's recurring fee configuration (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/settings [get]
func (h *BillingHandler) GetFeeSettings(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	settings, err := h.settingsService.Get(c.Context(), clubID)
	if err != nil {
		if errors.Is(err, services.ErrFeeSettingsNotFound) {
			return response.NotFound(c, "Fee settings not configured yet")
		}
		return persistenceError(c, err, "Failed to get fee settings")
	}

	return response.Success(c, "Fee settings retrieved successfully", fiber.Map{
		"settings": settings,
	})
}

// UpdateFeeSettingsRequest represents fee settings request body
type UpdateFeeSettingsRequest struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	CurrencyCode  string          `json:"currency_code,omitempty"`
	ActiveMonths  []int           `json:"active_months"`
	IsActive      bool            `json:"is_active"`
}

// UpdateFeeSettings replaces the club's fee settings
// @Summary Update fee settings
// @Description Replace the club's recurring fee configuration (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateFeeSettingsRequest true "Fee settings"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /billing/settings [put]
func (h *BillingHandler) UpdateFeeSettings(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateFeeSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateFeeSettingsInput{
		MonthlyAmount: req.MonthlyAmount,
		CurrencyCode:  req.CurrencyCode,
		ActiveMonths:  req.ActiveMonths,
		IsActive:      req.IsActive,
	}

	settings, err := h.settingsService.Update(c.Context(), clubID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Monthly amount must be at least 0.01")
		case errors.Is(err, domain.ErrInvalidActiveMonths):
			return response.BadRequest(c, "Active months must be unique values between 1 and 12")
		case errors.Is(err, domain.ErrNoActiveMonths):
			return response.BadRequest(c, "An active schedule needs at least one month")
		case errors.Is(err, services.ErrInvalidCurrency):
			return response.BadRequest(c, "Currency code must be a 3-letter code")
		default:
			return persistenceError(c, err, "Failed to update fee settings")
		}
	}

	return response.Success(c, "Fee settings updated successfully", fiber.Map{
		"settings": settings,
	})
}

// ============================================================
// Fee Generation
// ============================================================

// GenerateFeesRequest represents fee generation request body
type GenerateFeesRequest struct {
	Year int `json:"year,omitempty"`
}

// GenerateFees generates the recurring charges for a year
// @Summary Generate monthly fees
// @Description Generate the club's recurring charges for a year. Safe to rerun: existing charges are skipped. (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateFeesRequest true "Generation options"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /billing/generate [post]
func (h *BillingHandler) GenerateFees(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req GenerateFeesRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, _ := c.Locals("userID").(uint)

	result, err := h.feeService.GenerateForClub(c.Context(), clubID, req.Year, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFeeSettingsNotFound):
			return response.BadRequest(c, "Fee settings not configured yet")
		case errors.Is(err, domain.ErrNoActiveMonths):
			return response.BadRequest(c, "Fee schedule is inactive or has no active months")
		case errors.Is(err, domain.ErrEmptyMemberList):
			return response.BadRequest(c, "No eligible members to bill")
		default:
			return persistenceError(c, err, "Failed to generate fees")
		}
	}

	return response.Success(c, "Fee generation completed", result)
}

// ============================================================
// Charges
// ============================================================

// CreateChargeRequest represents custom charge request body
type CreateChargeRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	MemberIDs   []uint          `json:"member_ids"`
	ApplyToAll  bool            `json:"apply_to_all"`
}

// CreateCharge creates a custom charge
// @Summary Create custom charge
// @Description Create a one-off charge for selected members or the whole eligible roster (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateChargeRequest true "Charge data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /billing/charges [post]
func (h *BillingHandler) CreateCharge(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, _ := c.Locals("userID").(uint)

	input := &services.CreateCustomChargeInput{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		MemberIDs:   req.MemberIDs,
		ApplyToAll:  req.ApplyToAll,
	}

	charge, err := h.chargeService.CreateCustomCharge(c.Context(), clubID, input, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, domain.ErrMissingDescription):
			return response.BadRequest(c, "Description is required")
		case errors.Is(err, domain.ErrMissingDueDate):
			return response.BadRequest(c, "Due date is required")
		case errors.Is(err, domain.ErrInvalidDateFormat):
			return response.BadRequest(c, "Due date must be YYYY-MM-DD")
		case errors.Is(err, domain.ErrNoMembersSelected):
			return response.BadRequest(c, "Select at least one member")
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberNotInClub):
			return response.BadRequest(c, "Member does not belong to this club")
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		default:
			return persistenceError(c, err, "Failed to create charge")
		}
	}

	return response.Created(c, "Charge created successfully", fiber.Map{
		"charge": charge.ToResponse(),
	})
}

// ListCharges lists the club's charges
// @Summary List charges
// @Description Get a paginated list of the club's charges, newest first (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /billing/charges [get]
func (h *BillingHandler) ListCharges(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	charges, total, err := h.chargeService.ListByClub(c.Context(), clubID, params.Page, params.Limit)
	if err != nil {
		return persistenceError(c, err, "Failed to list charges")
	}

	items := make([]interface{}, len(charges))
	for i, charge := range charges {
		items[i] = charge.ToResponse()
	}

	return response.Success(c, "Charges retrieved successfully", fiber.Map{
		"charges": items,
		"meta":    pagination.GetMeta(params, total),
	})
}

// GetCharge gets a charge by ID
// @Summary Get charge
// @Description Get a charge by ID (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charge ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/charges/{id} [get]
func (h *BillingHandler) GetCharge(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid charge ID")
	}

	charge, err := h.chargeService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrChargeNotFound) {
			return response.NotFound(c, "Charge not found")
		}
		return persistenceError(c, err, "Failed to get charge")
	}

	return response.Success(c, "Charge retrieved successfully", fiber.Map{
		"charge": charge.ToResponse(),
	})
}

// ListMemberCharges lists one member's charges
// @Summary List member charges
// @Description Get a paginated list of one member's charges (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/members/{id}/charges [get]
func (h *BillingHandler) ListMemberCharges(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	params := pagination.GetParams(c)

	charges, total, err := h.chargeService.ListByMember(c.Context(), uint(id), params.Page, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return persistenceError(c, err, "Failed to list member charges")
	}

	items := make([]interface{}, len(charges))
	for i, charge := range charges {
		items[i] = charge.ToResponse()
	}

	return response.Success(c, "Member charges retrieved successfully", fiber.Map{
		"charges": items,
		"meta":    pagination.GetMeta(params, total),
	})
}

// ============================================================
// Payments
// ============================================================

// RecordPaymentRequest represents payment request body
type RecordPaymentRequest struct {
	MemberID uint            `json:"member_id"`
	ChargeID *uint           `json:"charge_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	PaidAt   string          `json:"paid_at,omitempty"`
}

// RecordPayment records a payment
// @Summary Record payment
// @Description Record a payment for a member, optionally linked to a specific charge (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /billing/payments [post]
func (h *BillingHandler) RecordPayment(c *fiber.Ctx) error {
	clubID, ok := callerClubID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	userID, _ := c.Locals("userID").(uint)

	input := &services.RecordPaymentInput{
		MemberID: req.MemberID,
		ChargeID: req.ChargeID,
		Amount:   req.Amount,
		PaidAt:   req.PaidAt,
	}

	payment, err := h.chargeService.RecordPayment(c.Context(), clubID, input, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, domain.ErrInvalidDateFormat):
			return response.BadRequest(c, "Paid at must be YYYY-MM-DD")
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberNotInClub):
			return response.BadRequest(c, "Member does not belong to this club")
		case errors.Is(err, services.ErrChargeNotFound):
			return response.NotFound(c, "Charge not found")
		case errors.Is(err, services.ErrChargeNotTargeted):
			return response.BadRequest(c, "Charge does not apply to this member")
		default:
			return persistenceError(c, err, "Failed to record payment")
		}
	}

	return response.Created(c, "Payment recorded successfully", fiber.Map{
		"payment": payment,
	})
}

// ListMemberPayments lists one member's payments
// @Summary List member payments
// @Description Get a paginated list of one member's payments, newest first (Treasurer or Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/members/{id}/payments [get]
func (h *BillingHandler) ListMemberPayments(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	params := pagination.GetParams(c)

	payments, total, err := h.chargeService.ListPaymentsByMember(c.Context(), uint(id), params.Page, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return persistenceError(c, err, "Failed to list member payments")
	}

	return response.Success(c, "Member payments retrieved successfully", fiber.Map{
		"payments": payments,
		"meta":     pagination.GetMeta(params, total),
	})
}
