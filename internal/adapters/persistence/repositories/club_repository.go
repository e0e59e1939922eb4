package repositories

import (
	"context"

	"clubledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// clubRepository implements ClubRepository interface
type clubRepository struct {
	db *gorm.DB
}

// NewClubRepository creates a new club repository
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &clubRepository{db: db}
}

// Create creates a new club
func (r *clubRepository) Create(ctx context.Context, club *models.Club) error {
	return storageErr("clubs.create", r.db.WithContext(ctx).Create(club).Error)
}

// GetByID gets a club by ID
func (r *clubRepository) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	var club models.Club
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if err != nil {
		return nil, storageErr("clubs.get", err)
	}
	return &club, nil
}

// Update updates a club
func (r *clubRepository) Update(ctx context.Context, club *models.Club) error {
	return storageErr("clubs.update", r.db.WithContext(ctx).Save(club).Error)
}

// Delete soft deletes a club
func (r *clubRepository) Delete(ctx context.Context, id uint) error {
	return storageErr("clubs.delete", r.db.WithContext(ctx).Delete(&models.Club{}, id).Error)
}

// List lists clubs with pagination
func (r *clubRepository) List(ctx context.Context, offset, limit int) ([]*models.Club, int64, error) {
	var clubs []*models.Club
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.Club{}).Count(&total).Error; err != nil {
		return nil, 0, storageErr("clubs.list", err)
	}

	// Get clubs with pagination
	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Order("id ASC").Find(&clubs).Error; err != nil {
		return nil, 0, storageErr("clubs.list", err)
	}

	return clubs, total, nil
}

// ExistsByName checks if club name exists
func (r *clubRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Club{}).Where("name = ?", name).Count(&count).Error
	return count > 0, storageErr("clubs.exists", err)
}
