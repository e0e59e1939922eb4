package repositories

import (
	"context"
	"errors"

	"clubledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// feeSettingsRepository implements FeeSettingsRepository interface
type feeSettingsRepository struct {
	db *gorm.DB
}

// NewFeeSettingsRepository creates a new fee settings repository
func NewFeeSettingsRepository(db *gorm.DB) FeeSettingsRepository {
	return &feeSettingsRepository{db: db}
}

// GetByClub gets a club's fee settings
func (r *feeSettingsRepository) GetByClub(ctx context.Context, clubID uint) (*models.ClubFeeSettings, error) {
	var settings models.ClubFeeSettings
	err := r.db.WithContext(ctx).Where("club_id = ?", clubID).First(&settings).Error
	if err != nil {
		return nil, storageErr("fee_settings.get", err)
	}
	return &settings, nil
}

// Put persists the full settings row. The row is created on the first
// write; later writes replace every field rather than merging.
func (r *feeSettingsRepository) Put(ctx context.Context, settings *models.ClubFeeSettings) error {
	var existing models.ClubFeeSettings
	err := r.db.WithContext(ctx).Where("club_id = ?", settings.ClubID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr("fee_settings.put", r.db.WithContext(ctx).Create(settings).Error)
		}
		return storageErr("fee_settings.put", err)
	}

	settings.ID = existing.ID
	settings.CreatedAt = existing.CreatedAt
	return storageErr("fee_settings.put", r.db.WithContext(ctx).Save(settings).Error)
}
