package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"clubledger/internal/adapters/persistence/models"
)

// memoryStore is the in-memory storage backend. One mutex guards every
// table so multi-entity reads (Ledger) observe a single consistent
// snapshot, mirroring the transaction the MySQL backend uses. Missing
// rows surface as gorm.ErrRecordNotFound and unique-key collisions as
// gorm.ErrDuplicatedKey so the service layer maps errors identically
// for both backends.
type memoryStore struct {
	mu sync.RWMutex

	users         map[uint]models.User
	refreshTokens map[uint]models.RefreshToken
	clubs         map[uint]models.Club
	members       map[uint]models.Member
	feeSettings   map[uint]models.ClubFeeSettings
	charges       map[uint]models.Charge
	payments      map[uint]models.Payment

	userSeq     uint
	tokenSeq    uint
	clubSeq     uint
	memberSeq   uint
	settingsSeq uint
	chargeSeq   uint
	targetSeq   uint
	paymentSeq  uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[uint]models.User),
		refreshTokens: make(map[uint]models.RefreshToken),
		clubs:         make(map[uint]models.Club),
		members:       make(map[uint]models.Member),
		feeSettings:   make(map[uint]models.ClubFeeSettings),
		charges:       make(map[uint]models.Charge),
		payments:      make(map[uint]models.Payment),
	}
}

func copyCharge(c models.Charge) *models.Charge {
	out := c
	out.Targets = make([]models.ChargeTarget, len(c.Targets))
	copy(out.Targets, c.Targets)
	return &out
}

func copySettings(s models.ClubFeeSettings) *models.ClubFeeSettings {
	out := s
	out.ActiveMonths = append(datatypes.JSONSlice[int](nil), s.ActiveMonths...)
	return &out
}

func paginate[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ============================================================
// User repository (memory)
// ============================================================

type memoryUserRepository struct {
	store *memoryStore
}

// newMemoryUserRepository creates an in-memory user repository
func newMemoryUserRepository(store *memoryStore) UserRepository {
	return &memoryUserRepository{store: store}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}

	s.userSeq++
	user.ID = s.userSeq
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepository) Update(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	return nil
}

func (r *memoryUserRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return paginate(users, offset, limit), int64(len(s.users)), nil
}

func (r *memoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================
// Refresh token repository (memory)
// ============================================================

type memoryRefreshTokenRepository struct {
	store *memoryStore
}

// newMemoryRefreshTokenRepository creates an in-memory refresh token repository
func newMemoryRefreshTokenRepository(store *memoryStore) RefreshTokenRepository {
	return &memoryRefreshTokenRepository{store: store}
}

func (r *memoryRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenSeq++
	token.ID = s.tokenSeq
	token.CreatedAt = time.Now()
	s.refreshTokens[token.ID] = *token
	return nil
}

func (r *memoryRefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.refreshTokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			t := t
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRefreshTokenRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens []*models.RefreshToken
	for _, t := range s.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t := t
			tokens = append(tokens, &t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })
	return tokens, nil
}

func (r *memoryRefreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.refreshTokens[id]
	if !ok {
		return nil
	}
	now := time.Now()
	t.RevokedAt = &now
	s.refreshTokens[id] = t
	return nil
}

func (r *memoryRefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, t := range s.refreshTokens {
		if t.TokenHash == tokenHash {
			t.RevokedAt = &now
			s.refreshTokens[id] = t
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, t := range s.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			s.refreshTokens[id] = t
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, t := range s.refreshTokens {
		if t.ExpiresAt.Before(now) {
			delete(s.refreshTokens, id)
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepository) CountActiveByUserID(ctx context.Context, userID uint) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	now := time.Now()
	for _, t := range s.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil && t.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

// ============================================================
// Club repository (memory)
// ============================================================

type memoryClubRepository struct {
	store *memoryStore
}

// newMemoryClubRepository creates an in-memory club repository
func newMemoryClubRepository(store *memoryStore) ClubRepository {
	return &memoryClubRepository{store: store}
}

func (r *memoryClubRepository) Create(ctx context.Context, club *models.Club) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clubSeq++
	club.ID = s.clubSeq
	now := time.Now()
	club.CreatedAt = now
	club.UpdatedAt = now
	s.clubs[club.ID] = *club
	return nil
}

func (r *memoryClubRepository) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clubs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memoryClubRepository) Update(ctx context.Context, club *models.Club) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clubs[club.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	club.UpdatedAt = time.Now()
	s.clubs[club.ID] = *club
	return nil
}

func (r *memoryClubRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clubs, id)
	return nil
}

func (r *memoryClubRepository) List(ctx context.Context, offset, limit int) ([]*models.Club, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	clubs := make([]*models.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		c := c
		clubs = append(clubs, &c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].ID < clubs[j].ID })

	return paginate(clubs, offset, limit), int64(len(s.clubs)), nil
}

func (r *memoryClubRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clubs {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================
// Member repository (memory)
// ============================================================

type memoryMemberRepository struct {
	store *memoryStore
}

// newMemoryMemberRepository creates an in-memory member repository
func newMemoryMemberRepository(store *memoryStore) MemberRepository {
	return &memoryMemberRepository{store: store}
}

func (r *memoryMemberRepository) Create(ctx context.Context, member *models.Member) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memberSeq++
	member.ID = s.memberSeq
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now
	s.members[member.ID] = *member
	return nil
}

func (r *memoryMemberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *memoryMemberRepository) GetByEmail(ctx context.Context, clubID uint, email string) (*models.Member, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.ClubID == clubID && strings.EqualFold(m.Email, email) {
			m := m
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryMemberRepository) Update(ctx context.Context, member *models.Member) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[member.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	member.UpdatedAt = time.Now()
	s.members[member.ID] = *member
	return nil
}

func (r *memoryMemberRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, id)
	return nil
}

func (r *memoryMemberRepository) ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Member, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []*models.Member
	for _, m := range s.members {
		if m.ClubID == clubID {
			m := m
			members = append(members, &m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].FullName < members[j].FullName })

	return paginate(members, offset, limit), int64(len(members)), nil
}

func (r *memoryMemberRepository) ListEligible(ctx context.Context, clubID uint) ([]*models.Member, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []*models.Member
	for _, m := range s.members {
		if m.ClubID == clubID && m.IsActive && m.ApprovalStatus == models.ApprovalConfirmed {
			m := m
			members = append(members, &m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (r *memoryMemberRepository) ListIDsByClub(ctx context.Context, clubID uint) ([]uint, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uint
	for _, m := range s.members {
		if m.ClubID == clubID {
			ids = append(ids, m.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memoryMemberRepository) CountByClub(ctx context.Context, clubID uint) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.members {
		if m.ClubID == clubID {
			count++
		}
	}
	return count, nil
}

func (r *memoryMemberRepository) CountPendingByClub(ctx context.Context, clubID uint) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.members {
		if m.ClubID == clubID && m.ApprovalStatus == models.ApprovalPending {
			count++
		}
	}
	return count, nil
}

// ============================================================
// Fee settings repository (memory)
// ============================================================

type memoryFeeSettingsRepository struct {
	store *memoryStore
}

// newMemoryFeeSettingsRepository creates an in-memory fee settings repository
func newMemoryFeeSettingsRepository(store *memoryStore) FeeSettingsRepository {
	return &memoryFeeSettingsRepository{store: store}
}

func (r *memoryFeeSettingsRepository) GetByClub(ctx context.Context, clubID uint) (*models.ClubFeeSettings, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.feeSettings[clubID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copySettings(settings), nil
}

func (r *memoryFeeSettingsRepository) Put(ctx context.Context, settings *models.ClubFeeSettings) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.feeSettings[settings.ClubID]; ok {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	} else {
		s.settingsSeq++
		settings.ID = s.settingsSeq
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	s.feeSettings[settings.ClubID] = *copySettings(*settings)
	return nil
}

// ============================================================
// Charge repository (memory)
// ============================================================

type memoryChargeRepository struct {
	store *memoryStore
}

// newMemoryChargeRepository creates an in-memory charge repository
func newMemoryChargeRepository(store *memoryStore) ChargeRepository {
	return &memoryChargeRepository{store: store}
}

// hasRecurringLocked reports whether a recurring charge already exists for
// the member and period. Caller must hold the write lock; the check plus
// the insert under one lock is what the unique index gives the MySQL
// backend.
func (s *memoryStore) hasRecurringLocked(memberID uint, periodKey string) bool {
	for _, c := range s.charges {
		for _, t := range c.Targets {
			if t.MemberID == memberID && t.PeriodKey != nil && *t.PeriodKey == periodKey {
				return true
			}
		}
	}
	return false
}

func (s *memoryStore) insertChargeLocked(charge *models.Charge) {
	s.chargeSeq++
	charge.ID = s.chargeSeq
	charge.CreatedAt = time.Now()
	for i := range charge.Targets {
		s.targetSeq++
		charge.Targets[i].ID = s.targetSeq
		charge.Targets[i].ChargeID = charge.ID
	}
	s.charges[charge.ID] = *copyCharge(*charge)
}

func (r *memoryChargeRepository) CreateRecurringCharge(ctx context.Context, charge *models.Charge) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range charge.Targets {
		if t.PeriodKey != nil && s.hasRecurringLocked(t.MemberID, *t.PeriodKey) {
			return ErrDuplicateCharge
		}
	}
	s.insertChargeLocked(charge)
	return nil
}

func (r *memoryChargeRepository) CreateCustomCharge(ctx context.Context, charge *models.Charge) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertChargeLocked(charge)
	return nil
}

func (r *memoryChargeRepository) GetByID(ctx context.Context, id uint) (*models.Charge, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.charges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyCharge(c), nil
}

func (r *memoryChargeRepository) ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Charge, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var charges []*models.Charge
	for _, c := range s.charges {
		if c.ClubID == clubID {
			charges = append(charges, copyCharge(c))
		}
	}
	sort.Slice(charges, func(i, j int) bool {
		if charges[i].CreatedAt.Equal(charges[j].CreatedAt) {
			return charges[i].ID > charges[j].ID
		}
		return charges[i].CreatedAt.After(charges[j].CreatedAt)
	})

	return paginate(charges, offset, limit), int64(len(charges)), nil
}

func (r *memoryChargeRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Charge, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var charges []*models.Charge
	for _, c := range s.charges {
		for _, t := range c.Targets {
			if t.MemberID == memberID {
				charges = append(charges, copyCharge(c))
				break
			}
		}
	}
	sort.Slice(charges, func(i, j int) bool {
		if charges[i].DueDate.Equal(charges[j].DueDate) {
			return charges[i].ID < charges[j].ID
		}
		return charges[i].DueDate.Before(charges[j].DueDate)
	})

	return paginate(charges, offset, limit), int64(len(charges)), nil
}

func (r *memoryChargeRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.Reference == payment.Reference {
			return gorm.ErrDuplicatedKey
		}
	}

	s.paymentSeq++
	payment.ID = s.paymentSeq
	payment.CreatedAt = time.Now()
	s.payments[payment.ID] = *payment
	return nil
}

func (r *memoryChargeRepository) ListPaymentsByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []*models.Payment
	for _, p := range s.payments {
		if p.MemberID == memberID {
			p := p
			payments = append(payments, &p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].PaidAt.After(payments[j].PaidAt)
	})

	return paginate(payments, offset, limit), int64(len(payments)), nil
}

func (r *memoryChargeRepository) Ledger(ctx context.Context, clubID uint, memberIDs []uint) (*models.LedgerSnapshot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		wanted[id] = true
	}

	snapshot := &models.LedgerSnapshot{}
	for _, c := range s.charges {
		if c.ClubID != clubID {
			continue
		}
		if len(wanted) > 0 {
			targeted := false
			for _, t := range c.Targets {
				if wanted[t.MemberID] {
					targeted = true
					break
				}
			}
			if !targeted {
				continue
			}
		}
		snapshot.Charges = append(snapshot.Charges, copyCharge(c))
	}
	sort.Slice(snapshot.Charges, func(i, j int) bool {
		if snapshot.Charges[i].DueDate.Equal(snapshot.Charges[j].DueDate) {
			return snapshot.Charges[i].ID < snapshot.Charges[j].ID
		}
		return snapshot.Charges[i].DueDate.Before(snapshot.Charges[j].DueDate)
	})

	for _, p := range s.payments {
		if p.ClubID != clubID {
			continue
		}
		if len(wanted) > 0 && !wanted[p.MemberID] {
			continue
		}
		p := p
		snapshot.Payments = append(snapshot.Payments, &p)
	}
	sort.Slice(snapshot.Payments, func(i, j int) bool {
		if snapshot.Payments[i].PaidAt.Equal(snapshot.Payments[j].PaidAt) {
			return snapshot.Payments[i].ID < snapshot.Payments[j].ID
		}
		return snapshot.Payments[i].PaidAt.Before(snapshot.Payments[j].PaidAt)
	})

	return snapshot, nil
}
