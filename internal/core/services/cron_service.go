package services

import (
	"context"
	"errors"
	"log"
	"time"

	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/robfig/cron/v3"
)

// ============================================================
// Scheduled jobs: monthly fee generation + token cleanup
// ============================================================

// CronService runs the scheduled background jobs. Fee generation fires
// on the 1st of every month and is safe to rerun: charges that already
// exist for a period are skipped, not duplicated.
type CronService struct {
	feeService *FeeGenerationService
	clubRepo   repositories.ClubRepository
	tokenRepo  repositories.RefreshTokenRepository
	clock      clock.Clock
	cron       *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	feeService *FeeGenerationService,
	clubRepo repositories.ClubRepository,
	tokenRepo repositories.RefreshTokenRepository,
	clk clock.Clock,
) *CronService {
	return &CronService{
		feeService: feeService,
		clubRepo:   clubRepo,
		tokenRepo:  tokenRepo,
		clock:      clk,
		cron:       cron.New(),
	}
}

// Start registers the schedules and launches the scheduler
func (s *CronService) Start() {
	// 02:00 on the 1st of every month
	if _, err := s.cron.AddFunc("0 2 1 * *", s.runMonthlyGeneration); err != nil {
		log.Printf("❌ Failed to schedule fee generation: %v", err)
	}

	// 03:00 every day
	if _, err := s.cron.AddFunc("0 3 * * *", s.runTokenCleanup); err != nil {
		log.Printf("❌ Failed to schedule token cleanup: %v", err)
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// runMonthlyGeneration generates the current year's recurring fees for
// every club with an active fee schedule. Clubs without settings or
// without eligible members are skipped quietly.
func (s *CronService) runMonthlyGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	year := s.clock.Now().UTC().Year()
	offset := 0

	for {
		clubs, total, err := s.clubRepo.List(ctx, offset, 100)
		if err != nil {
			log.Printf("❌ Fee generation club listing error: %v", err)
			return
		}

		for _, club := range clubs {
			// CreatedBy 0 marks the charge as system-generated
			result, err := s.feeService.GenerateForClub(ctx, club.ID, year, 0)
			switch {
			case err == nil:
				if result.Created > 0 {
					log.Printf("💰 Generated %d fees for club %s (%d already existed)", result.Created, club.Name, result.Skipped)
				}
			case errors.Is(err, ErrFeeSettingsNotFound),
				errors.Is(err, domain.ErrNoActiveMonths),
				errors.Is(err, domain.ErrEmptyMemberList):
				// Billing not set up for this club
			default:
				log.Printf("❌ Fee generation for club %s failed: %v", club.Name, err)
			}
		}

		offset += len(clubs)
		if int64(offset) >= total || len(clubs) == 0 {
			break
		}
	}
}

// runTokenCleanup deletes refresh tokens past their expiry
func (s *CronService) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Token cleanup error: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens cleaned up")
}
