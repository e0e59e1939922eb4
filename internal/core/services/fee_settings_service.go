package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Fee settings errors
var (
	ErrFeeSettingsNotFound = errors.New("fee settings not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrInvalidCurrency     = errors.New("currency code must be 3 letters")
)

// minMonthlyAmount is the smallest configurable fee, one cent.
var minMonthlyAmount = decimal.New(1, -2)

// FeeSettingsService handles recurring fee configuration
type FeeSettingsService struct {
	settingsRepo repositories.FeeSettingsRepository
	clubRepo     repositories.ClubRepository
}

// NewFeeSettingsService creates a new fee settings service
func NewFeeSettingsService(
	settingsRepo repositories.FeeSettingsRepository,
	clubRepo repositories.ClubRepository,
) *FeeSettingsService {
	return &FeeSettingsService{
		settingsRepo: settingsRepo,
		clubRepo:     clubRepo,
	}
}

// UpdateFeeSettingsInput represents fee settings update input
type UpdateFeeSettingsInput struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount" validate:"required"`
	CurrencyCode  string          `json:"currency_code,omitempty"`
	ActiveMonths  []int           `json:"active_months"`
	IsActive      bool            `json:"is_active"`
}

// Get gets a club's fee settings
func (s *FeeSettingsService) Get(ctx context.Context, clubID uint) (*models.ClubFeeSettings, error) {
	settings, err := s.settingsRepo.GetByClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeSettingsNotFound
		}
		return nil, err
	}
	return settings, nil
}

// Update validates and persists a club's fee settings. The stored row is
// replaced with the input as a whole; fields absent from the input reset
// to their zero values rather than keeping old ones.
func (s *FeeSettingsService) Update(ctx context.Context, clubID uint, input *UpdateFeeSettingsInput) (*models.ClubFeeSettings, error) {
	// 1. Validate club exists
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// 2. Validate amount, at least one cent
	if input.MonthlyAmount.LessThan(minMonthlyAmount) {
		return nil, domain.ErrInvalidAmount
	}

	// 3. Validate active months
	if err := domain.ValidateActiveMonths(input.ActiveMonths); err != nil {
		return nil, err
	}
	if input.IsActive && len(input.ActiveMonths) == 0 {
		return nil, domain.ErrNoActiveMonths
	}

	// 4. Normalize currency, default to the club's
	currency := strings.ToUpper(strings.TrimSpace(input.CurrencyCode))
	if currency == "" {
		currency = club.CurrencyCode
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	// 5. Persist full replacement
	settings := &models.ClubFeeSettings{
		ClubID:        clubID,
		MonthlyAmount: input.MonthlyAmount,
		CurrencyCode:  currency,
		ActiveMonths:  datatypes.NewJSONSlice(input.ActiveMonths),
		IsActive:      input.IsActive,
	}

	if err := s.settingsRepo.Put(ctx, settings); err != nil {
		return nil, err
	}

	log.Printf("✅ Fee settings updated for club %d: %s %s/month, %d active months",
		clubID, settings.MonthlyAmount.StringFixed(2), settings.CurrencyCode, len(settings.ActiveMonths))

	return settings, nil
}
