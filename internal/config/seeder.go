package config

import (
	"context"
	"errors"
	"log"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeder creates the initial data a fresh install needs. It goes through
// the store interfaces, so it works the same on MySQL and in memory.
type Seeder struct {
	stores *repositories.Stores
	clubID uint
}

// NewSeeder creates a new seeder instance
func NewSeeder(stores *repositories.Stores) *Seeder {
	return &Seeder{stores: stores}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running seeders...")

	ctx := context.Background()

	if err := s.seedDemoClub(ctx); err != nil {
		log.Printf("⚠️ Club seeder skipped: %v", err)
	}
	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Seeding completed")
	return nil
}

// seedDemoClub seeds a demo club with a ready-to-use fee schedule
// This is for development/testing only
func (s *Seeder) seedDemoClub(ctx context.Context) error {
	const name = "Demo Sports Club"

	exists, err := s.stores.Clubs.ExistsByName(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	club := &models.Club{
		Name:         name,
		CurrencyCode: "EUR",
	}
	if err := s.stores.Clubs.Create(ctx, club); err != nil {
		return err
	}
	s.clubID = club.ID

	// Monthly fee all year except the summer break
	settings := &models.ClubFeeSettings{
		ClubID:        club.ID,
		MonthlyAmount: decimal.RequireFromString("12.50"),
		CurrencyCode:  "EUR",
		ActiveMonths:  datatypes.NewJSONSlice([]int{1, 2, 3, 4, 5, 6, 9, 10, 11, 12}),
		IsActive:      true,
	}
	if err := s.stores.FeeSettings.Put(ctx, settings); err != nil {
		return err
	}

	log.Printf("✅ Demo club created: %s (id=%d)", club.Name, club.ID)
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	// Check if admin already exists
	_, err := s.stores.Users.GetByUsername(ctx, "admin")
	if err == nil {
		return nil // Admin already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if s.clubID == 0 {
		log.Println("⚠️ Skipping admin seed: no club to attach the admin to")
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		ClubID:   s.clubID,
		Username: "admin",
		Email:    "admin@clubledger.local",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}
	if err := s.stores.Users.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
