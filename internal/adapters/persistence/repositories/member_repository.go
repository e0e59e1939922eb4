package repositories

import (
	"context"

	"clubledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new roster member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return storageErr("members.create", r.db.WithContext(ctx).Create(member).Error)
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, storageErr("members.get", err)
	}
	return &member, nil
}

// GetByEmail gets a club's member by email
func (r *memberRepository) GetByEmail(ctx context.Context, clubID uint, email string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Where("email = ?", email).
		First(&member).Error
	if err != nil {
		return nil, storageErr("members.get", err)
	}
	return &member, nil
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return storageErr("members.update", r.db.WithContext(ctx).Save(member).Error)
}

// Delete soft deletes a member
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return storageErr("members.delete", r.db.WithContext(ctx).Delete(&models.Member{}, id).Error)
}

// ListByClub lists a club's members with pagination
func (r *memberRepository) ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("club_id = ?", clubID).
		Count(&total).Error; err != nil {
		return nil, 0, storageErr("members.list", err)
	}

	// Get members with pagination
	if err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Offset(offset).Limit(limit).
		Order("full_name ASC").
		Find(&members).Error; err != nil {
		return nil, 0, storageErr("members.list", err)
	}

	return members, total, nil
}

// ListEligible lists a club's active, approval-confirmed members.
// This is the roster snapshot used by fee generation and by
// "apply to all members" charge expansion.
func (r *memberRepository) ListEligible(ctx context.Context, clubID uint) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Where("is_active = ?", true).
		Where("approval_status = ?", models.ApprovalConfirmed).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, storageErr("members.list", err)
	}
	return members, nil
}

// ListIDsByClub lists the ids of every member of a club
func (r *memberRepository) ListIDsByClub(ctx context.Context, clubID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("club_id = ?", clubID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, storageErr("members.list", err)
	}
	return ids, nil
}

// CountByClub counts a club's members
func (r *memberRepository) CountByClub(ctx context.Context, clubID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("club_id = ?", clubID).
		Count(&count).Error
	return count, storageErr("members.count", err)
}

// CountPendingByClub counts a club's members awaiting approval
func (r *memberRepository) CountPendingByClub(ctx context.Context, clubID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("club_id = ?", clubID).
		Where("approval_status = ?", models.ApprovalPending).
		Count(&count).Error
	return count, storageErr("members.count", err)
}
