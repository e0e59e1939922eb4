package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// ClubRepository defines club repository interface
type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id uint) (*models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Club, int64, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// MemberRepository defines roster repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByEmail(ctx context.Context, clubID uint, email string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
	ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Member, int64, error)
	ListEligible(ctx context.Context, clubID uint) ([]*models.Member, error)
	ListIDsByClub(ctx context.Context, clubID uint) ([]uint, error)
	CountByClub(ctx context.Context, clubID uint) (int64, error)
	CountPendingByClub(ctx context.Context, clubID uint) (int64, error)
}

// FeeSettingsRepository defines fee settings repository interface.
// One row per club, created lazily by Put and replaced wholesale.
type FeeSettingsRepository interface {
	GetByClub(ctx context.Context, clubID uint) (*models.ClubFeeSettings, error)
	Put(ctx context.Context, settings *models.ClubFeeSettings) error
}

// ChargeRepository defines charge and payment repository interface.
// Charges and payments are append-only; there are no update or delete
// methods on purpose.
type ChargeRepository interface {
	CreateRecurringCharge(ctx context.Context, charge *models.Charge) error
	CreateCustomCharge(ctx context.Context, charge *models.Charge) error
	GetByID(ctx context.Context, id uint) (*models.Charge, error)
	ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Charge, int64, error)
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Charge, int64, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error)
	Ledger(ctx context.Context, clubID uint, memberIDs []uint) (*models.LedgerSnapshot, error)
}

// ErrDuplicateCharge reports that a recurring charge insert collided with
// the unique index on (member_id, period_key). Fee generation counts the
// collision as already generated rather than failing.
var ErrDuplicateCharge = errors.New("recurring charge already exists for member and period")

// storageErr wraps unexpected persistence failures so callers can detect
// them with domain.IsStorageError. Record-not-found passes through
// untouched because the service layer maps it to its own typed errors.
func storageErr(op string, err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return domain.NewStorageError(op, err)
}
