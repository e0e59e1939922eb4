package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/pkg/clock"

	"gorm.io/gorm"
)

// Member service errors
var (
	ErrMemberEmailTaken = errors.New("email already on the roster")
	ErrInvalidApproval  = errors.New("invalid approval status")
)

// MemberService handles club roster business logic
type MemberService struct {
	memberRepo repositories.MemberRepository
	clubRepo   repositories.ClubRepository
	clock      clock.Clock
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo repositories.MemberRepository,
	clubRepo repositories.ClubRepository,
	clk clock.Clock,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		clubRepo:   clubRepo,
		clock:      clk,
	}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

// UpdateMemberInput represents update member input
type UpdateMemberInput struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Whatsapp *string `json:"whatsapp"`
	IsActive *bool   `json:"is_active"`
}

// SetApprovalInput represents approval status input
type SetApprovalInput struct {
	Status string `json:"status" validate:"required"`
}

// Create adds a member to a club's roster. New members start as PENDING;
// fees are only generated for them once a treasurer confirms.
func (s *MemberService) Create(ctx context.Context, clubID uint, input *CreateMemberInput) (*models.Member, error) {
	// 1. Validate club exists
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// 2. Check email not already on the roster
	email := strings.TrimSpace(input.Email)
	if _, err := s.memberRepo.GetByEmail(ctx, clubID, email); err == nil {
		return nil, ErrMemberEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 3. Create member
	member := &models.Member{
		ClubID:         clubID,
		FullName:       strings.TrimSpace(input.FullName),
		Email:          email,
		Whatsapp:       strings.TrimSpace(input.Whatsapp),
		IsActive:       true,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member added to roster: %s (club %d)", member.FullName, clubID)

	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// ListByClub lists a club's roster
func (s *MemberService) ListByClub(ctx context.Context, clubID uint, page, limit int) ([]*models.Member, int64, error) {
	page, limit = clampPage(page, limit)
	return s.memberRepo.ListByClub(ctx, clubID, (page-1)*limit, limit)
}

// ListEligible lists a club's active, confirmed members
func (s *MemberService) ListEligible(ctx context.Context, clubID uint) ([]*models.Member, error) {
	return s.memberRepo.ListEligible(ctx, clubID)
}

// Update updates a member's roster entry
func (s *MemberService) Update(ctx context.Context, id uint, input *UpdateMemberInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	// Update fields
	if input.FullName != nil {
		member.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil && !strings.EqualFold(*input.Email, member.Email) {
		// Check email not already on the roster
		if _, err := s.memberRepo.GetByEmail(ctx, member.ClubID, *input.Email); err == nil {
			return nil, ErrMemberEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		member.Email = strings.TrimSpace(*input.Email)
	}
	if input.Whatsapp != nil {
		member.Whatsapp = strings.TrimSpace(*input.Whatsapp)
	}
	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// SetApproval moves a member through the approval flow. Confirming for
// the first time stamps JoinedAt. Approval only gates future fee
// generation; charges already created keep their target sets.
func (s *MemberService) SetApproval(ctx context.Context, id uint, input *SetApprovalInput) (*models.Member, error) {
	status := strings.ToUpper(strings.TrimSpace(input.Status))
	if status != models.ApprovalPending && status != models.ApprovalConfirmed && status != models.ApprovalRejected {
		return nil, ErrInvalidApproval
	}

	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	member.ApprovalStatus = status
	if status == models.ApprovalConfirmed && member.JoinedAt == nil {
		now := s.clock.Now().UTC()
		member.JoinedAt = &now
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member %d approval set to %s", member.ID, status)

	return member, nil
}

// Delete removes a member from the roster (soft delete). Existing
// charges keep targeting the member; only future generation stops.
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	if _, err := s.memberRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	return s.memberRepo.Delete(ctx, id)
}
