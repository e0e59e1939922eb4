package repositories

import "gorm.io/gorm"

// Stores bundles every repository so the storage backend is selected once
// at process start rather than checked per call site.
type Stores struct {
	Users         UserRepository
	RefreshTokens RefreshTokenRepository
	Clubs         ClubRepository
	Members       MemberRepository
	FeeSettings   FeeSettingsRepository
	Charges       ChargeRepository
}

// NewGormStores wires every repository to the MySQL database
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:         NewUserRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
		Clubs:         NewClubRepository(db),
		Members:       NewMemberRepository(db),
		FeeSettings:   NewFeeSettingsRepository(db),
		Charges:       NewChargeRepository(db),
	}
}

// NewMemoryStores wires every repository to one shared in-memory store
func NewMemoryStores() *Stores {
	store := newMemoryStore()
	return &Stores{
		Users:         newMemoryUserRepository(store),
		RefreshTokens: newMemoryRefreshTokenRepository(store),
		Clubs:         newMemoryClubRepository(store),
		Members:       newMemoryMemberRepository(store),
		FeeSettings:   newMemoryFeeSettingsRepository(store),
		Charges:       newMemoryChargeRepository(store),
	}
}
