package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Charge errors
var (
	ErrChargeNotFound    = errors.New("charge not found")
	ErrMemberNotInClub   = errors.New("member does not belong to this club")
	ErrChargeNotTargeted = errors.New("charge does not apply to this member")
)

// ChargeService handles one-off charges and payment records
type ChargeService struct {
	chargeRepo repositories.ChargeRepository
	memberRepo repositories.MemberRepository
	clubRepo   repositories.ClubRepository
	clock      clock.Clock
}

// NewChargeService creates a new charge service
func NewChargeService(
	chargeRepo repositories.ChargeRepository,
	memberRepo repositories.MemberRepository,
	clubRepo repositories.ClubRepository,
	clk clock.Clock,
) *ChargeService {
	return &ChargeService{
		chargeRepo: chargeRepo,
		memberRepo: memberRepo,
		clubRepo:   clubRepo,
		clock:      clk,
	}
}

// CreateCustomChargeInput represents custom charge input
type CreateCustomChargeInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	MemberIDs   []uint          `json:"member_ids"`
	ApplyToAll  bool            `json:"apply_to_all"`
}

// RecordPaymentInput represents payment input
type RecordPaymentInput struct {
	MemberID uint            `json:"member_id" validate:"required"`
	ChargeID *uint           `json:"charge_id,omitempty"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	PaidAt   string          `json:"paid_at,omitempty"`
}

// ResolveTargets expands "apply to all" into the explicit ids of the
// club's eligible members at this instant. Explicit ids are validated
// against the club roster and deduplicated. The returned set is the
// snapshot the charge stores; it is never re-resolved, so later roster
// changes leave existing charges untouched.
func (s *ChargeService) ResolveTargets(ctx context.Context, clubID uint, applyToAll bool, memberIDs []uint) ([]uint, error) {
	if applyToAll {
		members, err := s.memberRepo.ListEligible(ctx, clubID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		return ids, nil
	}

	seen := make(map[uint]bool, len(memberIDs))
	ids := make([]uint, 0, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		if member.ClubID != clubID {
			return nil, ErrMemberNotInClub
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateCustomCharge validates and creates a one-off charge. Validation
// order is fixed: amount, description, due date, then target set.
// "Apply to all" is expanded against the eligible roster here, once;
// the stored target set is never re-evaluated.
func (s *ChargeService) CreateCustomCharge(ctx context.Context, clubID uint, input *CreateCustomChargeInput, createdBy uint) (*models.Charge, error) {
	// 1. Amount must be positive
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	// 2. Description must not be blank
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrMissingDescription
	}

	// 3. Due date must be present and parse as a calendar date
	if strings.TrimSpace(input.DueDate) == "" {
		return nil, domain.ErrMissingDueDate
	}
	dueDate, err := time.ParseInLocation("2006-01-02", input.DueDate, time.UTC)
	if err != nil {
		return nil, domain.ErrInvalidDateFormat
	}

	// 4. Expand "apply to all", then the target set must be non-empty
	memberIDs, err := s.ResolveTargets(ctx, clubID, input.ApplyToAll, input.MemberIDs)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, domain.ErrNoMembersSelected
	}

	// 5. Club must exist, the charge carries its currency
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// 6. Persist charge with one target row per member
	targets := make([]models.ChargeTarget, len(memberIDs))
	for i, id := range memberIDs {
		targets[i] = models.ChargeTarget{MemberID: id}
	}

	charge := &models.Charge{
		ClubID:       clubID,
		Kind:         models.ChargeKindCustom,
		Description:  description,
		Amount:       input.Amount,
		CurrencyCode: club.CurrencyCode,
		DueDate:      dueDate,
		CreatedBy:    createdBy,
		Targets:      targets,
	}

	if err := s.chargeRepo.CreateCustomCharge(ctx, charge); err != nil {
		return nil, err
	}

	log.Printf("✅ Custom charge created: %q %s %s for %d members (club %d)",
		description, charge.Amount.StringFixed(2), charge.CurrencyCode, len(targets), clubID)

	return charge, nil
}

// GetByID gets a charge by ID
func (s *ChargeService) GetByID(ctx context.Context, id uint) (*models.Charge, error) {
	charge, err := s.chargeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChargeNotFound
		}
		return nil, err
	}
	return charge, nil
}

// ListByClub lists a club's charges
func (s *ChargeService) ListByClub(ctx context.Context, clubID uint, page, limit int) ([]*models.Charge, int64, error) {
	page, limit = clampPage(page, limit)
	return s.chargeRepo.ListByClub(ctx, clubID, (page-1)*limit, limit)
}

// ListByMember lists the charges targeting a member
func (s *ChargeService) ListByMember(ctx context.Context, memberID uint, page, limit int) ([]*models.Charge, int64, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrMemberNotFound
		}
		return nil, 0, err
	}

	page, limit = clampPage(page, limit)
	return s.chargeRepo.ListByMember(ctx, memberID, (page-1)*limit, limit)
}

// RecordPayment appends a payment record. Payments are immutable; a
// mistaken entry is corrected with a compensating charge, not an edit.
func (s *ChargeService) RecordPayment(ctx context.Context, clubID uint, input *RecordPaymentInput, recordedBy uint) (*models.Payment, error) {
	// 1. Amount must be positive
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	// 2. Member must belong to the club
	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.ClubID != clubID {
		return nil, ErrMemberNotInClub
	}

	// 3. A linked charge must exist and target the member
	if input.ChargeID != nil {
		charge, err := s.chargeRepo.GetByID(ctx, *input.ChargeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrChargeNotFound
			}
			return nil, err
		}
		if charge.ClubID != clubID {
			return nil, ErrChargeNotFound
		}

		targeted := false
		for _, t := range charge.Targets {
			if t.MemberID == input.MemberID {
				targeted = true
				break
			}
		}
		if !targeted {
			return nil, ErrChargeNotTargeted
		}
	}

	// 4. Paid-at defaults to today
	paidAt := s.clock.Now().UTC()
	if strings.TrimSpace(input.PaidAt) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.PaidAt, time.UTC)
		if err != nil {
			return nil, domain.ErrInvalidDateFormat
		}
		paidAt = parsed
	}

	// 5. Persist with a fresh receipt reference
	payment := &models.Payment{
		ClubID:     clubID,
		MemberID:   input.MemberID,
		ChargeID:   input.ChargeID,
		Amount:     input.Amount,
		PaidAt:     paidAt,
		Reference:  uuid.New().String(),
		RecordedBy: recordedBy,
	}

	if err := s.chargeRepo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("💰 Payment recorded: member %d amount %s (ref %s)",
		payment.MemberID, payment.Amount.StringFixed(2), payment.Reference)

	return payment, nil
}

// ListPaymentsByMember lists a member's payments
func (s *ChargeService) ListPaymentsByMember(ctx context.Context, memberID uint, page, limit int) ([]*models.Payment, int64, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrMemberNotFound
		}
		return nil, 0, err
	}

	page, limit = clampPage(page, limit)
	return s.chargeRepo.ListPaymentsByMember(ctx, memberID, (page-1)*limit, limit)
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
