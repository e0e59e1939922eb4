package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"gorm.io/gorm"
)

// FeeGenerationService expands fee settings into recurring charges
type FeeGenerationService struct {
	settingsRepo repositories.FeeSettingsRepository
	memberRepo   repositories.MemberRepository
	chargeRepo   repositories.ChargeRepository
	clock        clock.Clock
}

// NewFeeGenerationService creates a new fee generation service
func NewFeeGenerationService(
	settingsRepo repositories.FeeSettingsRepository,
	memberRepo repositories.MemberRepository,
	chargeRepo repositories.ChargeRepository,
	clk clock.Clock,
) *FeeGenerationService {
	return &FeeGenerationService{
		settingsRepo: settingsRepo,
		memberRepo:   memberRepo,
		chargeRepo:   chargeRepo,
		clock:        clk,
	}
}

// GenerationResult reports the outcome of one generation run
type GenerationResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// GenerateMonthlyFees creates one recurring charge per eligible member per
// active month of the year, due on the first of the month. A charge that
// already exists for a (member, period) pair counts as skipped, so
// rerunning with identical arguments never duplicates anything. The
// storage unique index is the only concurrency guard: two racing
// invocations are both safe, each collision lands in one caller's skipped
// count. A run that fails partway leaves its created charges behind and
// the retry skips them.
func (s *FeeGenerationService) GenerateMonthlyFees(ctx context.Context, clubID uint, members []*models.Member, settings *models.ClubFeeSettings, year int, createdBy uint) (*GenerationResult, error) {
	// 1. Validate inputs
	if len(members) == 0 {
		return nil, domain.ErrEmptyMemberList
	}
	if settings == nil || !settings.IsActive || len(settings.ActiveMonths) == 0 {
		return nil, domain.ErrNoActiveMonths
	}
	if year == 0 {
		year = s.clock.Now().UTC().Year()
	}

	// 2. Walk months in calendar order
	months := append([]int(nil), settings.ActiveMonths...)
	sort.Ints(months)

	result := &GenerationResult{}
	for _, month := range months {
		periodKey := domain.PeriodKey(year, month)
		dueDate := domain.MonthStart(year, month)
		description := fmt.Sprintf("Membership fee %s", periodKey)

		// 3. One charge per eligible member
		for _, member := range members {
			if !member.IsEligible() {
				continue
			}

			key := periodKey
			charge := &models.Charge{
				ClubID:       clubID,
				Kind:         models.ChargeKindRecurring,
				Description:  description,
				Amount:       settings.MonthlyAmount,
				CurrencyCode: settings.CurrencyCode,
				DueDate:      dueDate,
				PeriodKey:    &key,
				CreatedBy:    createdBy,
				Targets: []models.ChargeTarget{
					{MemberID: member.ID, PeriodKey: &key},
				},
			}

			err := s.chargeRepo.CreateRecurringCharge(ctx, charge)
			switch {
			case err == nil:
				result.Created++
			case errors.Is(err, repositories.ErrDuplicateCharge):
				result.Skipped++
			default:
				return nil, err
			}
		}
	}

	log.Printf("✅ Fee generation for club %d year %d: %d created, %d skipped",
		clubID, year, result.Created, result.Skipped)

	return result, nil
}

// GenerateForClub loads the club's settings and eligible roster and runs
// generation for the year. Year 0 means the current year.
func (s *FeeGenerationService) GenerateForClub(ctx context.Context, clubID uint, year int, createdBy uint) (*GenerationResult, error) {
	settings, err := s.settingsRepo.GetByClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeSettingsNotFound
		}
		return nil, err
	}

	members, err := s.memberRepo.ListEligible(ctx, clubID)
	if err != nil {
		return nil, err
	}

	return s.GenerateMonthlyFees(ctx, clubID, members, settings, year, createdBy)
}
