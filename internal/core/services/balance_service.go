package services

import (
	"context"
	"errors"
	"time"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService reduces a member's charges and payments into a balance
// snapshot. Paid/overdue status is never stored on a charge; every read
// recomputes it from the ledger, so the view cannot drift when payments
// land out of order.
//
// Payment application rule: a payment linked to a charge settles that
// charge first and any excess joins the general pool; the pool, together
// with all unlinked payments, settles remaining charges oldest due date
// first, charge id breaking ties. Overdue is the unsettled portion of
// charges due strictly before today. Balance and overdue both come from
// this one rule, so the two figures never disagree.
type BalanceService struct {
	chargeRepo repositories.ChargeRepository
	memberRepo repositories.MemberRepository
	clubRepo   repositories.ClubRepository
	clock      clock.Clock
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	chargeRepo repositories.ChargeRepository,
	memberRepo repositories.MemberRepository,
	clubRepo repositories.ClubRepository,
	clk clock.Clock,
) *BalanceService {
	return &BalanceService{
		chargeRepo: chargeRepo,
		memberRepo: memberRepo,
		clubRepo:   clubRepo,
		clock:      clk,
	}
}

// GetMemberBalance computes one member's balance snapshot
func (s *BalanceService) GetMemberBalance(ctx context.Context, memberID uint) (*domain.MemberBalance, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, member.ClubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	snapshot, err := s.chargeRepo.Ledger(ctx, member.ClubID, []uint{memberID})
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(s.clock.Now())
	return reduceBalances(snapshot, []uint{memberID}, club.CurrencyCode, today)[memberID], nil
}

// GetAllMembersBalances computes balances for many members in one pass
// over a single ledger snapshot. An empty id list means the whole roster.
// The batch read exists so a roster-wide view is one consistent snapshot
// instead of N round trips that could interleave with writes.
func (s *BalanceService) GetAllMembersBalances(ctx context.Context, clubID uint, memberIDs []uint) (map[uint]*domain.MemberBalance, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	if len(memberIDs) == 0 {
		memberIDs, err = s.memberRepo.ListIDsByClub(ctx, clubID)
		if err != nil {
			return nil, err
		}
		if len(memberIDs) == 0 {
			return map[uint]*domain.MemberBalance{}, nil
		}
	}

	snapshot, err := s.chargeRepo.Ledger(ctx, clubID, memberIDs)
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(s.clock.Now())
	return reduceBalances(snapshot, memberIDs, club.CurrencyCode, today), nil
}

// reduceBalances partitions one ledger snapshot by member and folds each
// partition. Single and batch reads share this function, so a batch
// result is identical to per-member reads against the same snapshot.
func reduceBalances(snapshot *models.LedgerSnapshot, memberIDs []uint, currency string, today time.Time) map[uint]*domain.MemberBalance {
	wanted := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		wanted[id] = true
	}

	chargesByMember := make(map[uint][]*models.Charge, len(memberIDs))
	for _, c := range snapshot.Charges {
		for _, t := range c.Targets {
			if wanted[t.MemberID] {
				chargesByMember[t.MemberID] = append(chargesByMember[t.MemberID], c)
			}
		}
	}

	paymentsByMember := make(map[uint][]*models.Payment, len(memberIDs))
	for _, p := range snapshot.Payments {
		if wanted[p.MemberID] {
			paymentsByMember[p.MemberID] = append(paymentsByMember[p.MemberID], p)
		}
	}

	balances := make(map[uint]*domain.MemberBalance, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = reduceMember(id, chargesByMember[id], paymentsByMember[id], currency, today)
	}
	return balances
}

// reduceMember folds one member's charges and payments into a balance.
// Charges must arrive ordered oldest due date first, then charge id; the
// ledger reads guarantee that order.
func reduceMember(memberID uint, charges []*models.Charge, payments []*models.Payment, currency string, today time.Time) *domain.MemberBalance {
	totalOwed := decimal.Zero
	remaining := make([]decimal.Decimal, len(charges))
	index := make(map[uint]int, len(charges))
	for i, c := range charges {
		totalOwed = totalOwed.Add(c.Amount)
		remaining[i] = c.Amount
		index[c.ID] = i
	}

	// Linked payments settle their own charge first; the excess and all
	// unlinked payments feed the pool.
	totalPaid := decimal.Zero
	pool := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)

		amount := p.Amount
		if p.ChargeID != nil {
			if i, ok := index[*p.ChargeID]; ok {
				applied := decimal.Min(remaining[i], amount)
				remaining[i] = remaining[i].Sub(applied)
				amount = amount.Sub(applied)
			}
		}
		pool = pool.Add(amount)
	}

	// The pool settles what is left, oldest due first.
	for i := range remaining {
		if !pool.IsPositive() {
			break
		}
		if remaining[i].IsZero() {
			continue
		}
		applied := decimal.Min(remaining[i], pool)
		remaining[i] = remaining[i].Sub(applied)
		pool = pool.Sub(applied)
	}

	// Overdue is the unsettled portion of charges due before today.
	overdue := decimal.Zero
	for i, c := range charges {
		if domain.DateOf(c.DueDate).Before(today) {
			overdue = overdue.Add(remaining[i])
		}
	}

	return &domain.MemberBalance{
		MemberID:       memberID,
		CurrencyCode:   currency,
		TotalOwed:      totalOwed,
		TotalPaid:      totalPaid,
		OverdueCharges: overdue,
		Balance:        totalPaid.Sub(totalOwed),
	}
}
