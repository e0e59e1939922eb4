package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Club service errors
var (
	ErrClubNameTaken = errors.New("club name already exists")
)

// ClubService handles club management business logic
type ClubService struct {
	clubRepo repositories.ClubRepository
}

// NewClubService creates a new club service
func NewClubService(clubRepo repositories.ClubRepository) *ClubService {
	return &ClubService{clubRepo: clubRepo}
}

// CreateClubInput represents create club input
type CreateClubInput struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// UpdateClubInput represents update club input
type UpdateClubInput struct {
	Name         *string `json:"name"`
	CurrencyCode *string `json:"currency_code"`
}

// Create creates a new club
func (s *ClubService) Create(ctx context.Context, input *CreateClubInput) (*models.Club, error) {
	// 1. Check name not taken
	name := strings.TrimSpace(input.Name)
	exists, err := s.clubRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrClubNameTaken
	}

	// 2. Normalize currency, EUR by default
	currency := strings.ToUpper(strings.TrimSpace(input.CurrencyCode))
	if currency == "" {
		currency = "EUR"
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	// 3. Create club
	club := &models.Club{
		Name:         name,
		CurrencyCode: currency,
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, err
	}

	log.Printf("✅ Club created: %s (%s)", club.Name, club.CurrencyCode)

	return club, nil
}

// GetByID gets a club by ID
func (s *ClubService) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

// List lists clubs with pagination
func (s *ClubService) List(ctx context.Context, page, limit int) ([]*models.Club, int64, error) {
	page, limit = clampPage(page, limit)
	return s.clubRepo.List(ctx, (page-1)*limit, limit)
}

// Update updates a club
func (s *ClubService) Update(ctx context.Context, id uint, input *UpdateClubInput) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// Update fields
	if input.Name != nil && strings.TrimSpace(*input.Name) != club.Name {
		name := strings.TrimSpace(*input.Name)
		exists, err := s.clubRepo.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrClubNameTaken
		}
		club.Name = name
	}

	if input.CurrencyCode != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.CurrencyCode))
		if len(currency) != 3 {
			return nil, ErrInvalidCurrency
		}
		club.CurrencyCode = currency
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, err
	}

	return club, nil
}

// Delete deletes a club (soft delete)
func (s *ClubService) Delete(ctx context.Context, id uint) error {
	if _, err := s.clubRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClubNotFound
		}
		return err
	}

	return s.clubRepo.Delete(ctx, id)
}
