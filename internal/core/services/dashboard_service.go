package services

import (
	"context"
	"errors"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService assembles overview data for each audience. Everything
// financial is reduced from the ledger on demand; nothing here is cached
// or stored.
type DashboardService struct {
	clubRepo      repositories.ClubRepository
	memberRepo    repositories.MemberRepository
	chargeRepo    repositories.ChargeRepository
	userRepo      repositories.UserRepository
	notifyService *NotificationService
	clock         clock.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	clubRepo repositories.ClubRepository,
	memberRepo repositories.MemberRepository,
	chargeRepo repositories.ChargeRepository,
	userRepo repositories.UserRepository,
	notifyService *NotificationService,
	clk clock.Clock,
) *DashboardService {
	return &DashboardService{
		clubRepo:      clubRepo,
		memberRepo:    memberRepo,
		chargeRepo:    chargeRepo,
		userRepo:      userRepo,
		notifyService: notifyService,
		clock:         clk,
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	TotalClubs int64         `json:"total_clubs"`
	TotalUsers int64         `json:"total_users"`
	Clubs      []ClubSummary `json:"clubs"`
}

// ClubSummary represents one club's roster summary
type ClubSummary struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	CurrencyCode     string `json:"currency_code"`
	TotalMembers     int64  `json:"total_members"`
	PendingApprovals int64  `json:"pending_approvals"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	clubs, totalClubs, err := s.clubRepo.List(ctx, 0, 100)
	if err != nil {
		return nil, err
	}

	_, totalUsers, err := s.userRepo.List(ctx, 0, 1)
	if err != nil {
		return nil, err
	}

	data := &AdminDashboardData{
		TotalClubs: totalClubs,
		TotalUsers: totalUsers,
		Clubs:      make([]ClubSummary, len(clubs)),
	}

	for i, club := range clubs {
		// Counts are best effort, a failed count shows as zero
		members, _ := s.memberRepo.CountByClub(ctx, club.ID)
		pending, _ := s.memberRepo.CountPendingByClub(ctx, club.ID)

		data.Clubs[i] = ClubSummary{
			ID:               club.ID,
			Name:             club.Name,
			CurrencyCode:     club.CurrencyCode,
			TotalMembers:     members,
			PendingApprovals: pending,
		}
	}

	return data, nil
}

// ============================================================
// Treasury Dashboard
// ============================================================

// TreasuryDashboardData represents a club's financial overview
type TreasuryDashboardData struct {
	ClubID       uint   `json:"club_id"`
	ClubName     string `json:"club_name"`
	CurrencyCode string `json:"currency_code"`

	// Roster statistics
	TotalMembers     int64 `json:"total_members"`
	PendingApprovals int64 `json:"pending_approvals"`

	// Ledger statistics
	TotalCharges  int64           `json:"total_charges"`
	TotalPayments int64           `json:"total_payments"`
	TotalOwed     decimal.Decimal `json:"total_owed"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalOverdue  decimal.Decimal `json:"total_overdue"`

	// Member breakdown
	MembersPaidUp  int `json:"members_paid_up"`
	MembersPending int `json:"members_pending"`
	MembersOverdue int `json:"members_overdue"`
}

// GetTreasuryDashboard returns a club's treasury overview, reduced from
// one ledger snapshot
func (s *DashboardService) GetTreasuryDashboard(ctx context.Context, clubID uint) (*TreasuryDashboardData, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	memberIDs, err := s.memberRepo.ListIDsByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.chargeRepo.Ledger(ctx, clubID, nil)
	if err != nil {
		return nil, err
	}

	data := &TreasuryDashboardData{
		ClubID:        club.ID,
		ClubName:      club.Name,
		CurrencyCode:  club.CurrencyCode,
		TotalCharges:  int64(len(snapshot.Charges)),
		TotalPayments: int64(len(snapshot.Payments)),
		TotalOwed:     decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalOverdue:  decimal.Zero,
	}

	// Counts are best effort, a failed count shows as zero
	data.TotalMembers, _ = s.memberRepo.CountByClub(ctx, clubID)
	data.PendingApprovals, _ = s.memberRepo.CountPendingByClub(ctx, clubID)

	today := domain.DateOf(s.clock.Now())
	for _, balance := range reduceBalances(snapshot, memberIDs, club.CurrencyCode, today) {
		data.TotalOwed = data.TotalOwed.Add(balance.TotalOwed)
		data.TotalPaid = data.TotalPaid.Add(balance.TotalPaid)
		data.TotalOverdue = data.TotalOverdue.Add(balance.OverdueCharges)

		switch {
		case balance.Balance.Sign() >= 0:
			data.MembersPaidUp++
		case balance.OverdueCharges.IsPositive():
			data.MembersOverdue++
		default:
			data.MembersPending++
		}
	}

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// MemberDashboardData represents a member's self-service view
type MemberDashboardData struct {
	Member         *models.Member           `json:"member"`
	Balance        *domain.MemberBalance    `json:"balance"`
	RecentCharges  []*models.ChargeResponse `json:"recent_charges"`
	RecentPayments []*models.Payment        `json:"recent_payments"`
	Message        string                   `json:"message"`
}

// GetMyMemberDashboard resolves the calling user's roster entry by the
// email they registered with, then builds their member dashboard
func (s *DashboardService) GetMyMemberDashboard(ctx context.Context, userID uint) (*MemberDashboardData, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	member, err := s.memberRepo.GetByEmail(ctx, user.ClubID, user.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return s.GetMemberDashboard(ctx, member.ID)
}

// GetMemberDashboard returns one member's position: balance snapshot,
// recent ledger activity, and the composed notification text
func (s *DashboardService) GetMemberDashboard(ctx context.Context, memberID uint) (*MemberDashboardData, error) {
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
	balance := reduceBalances(snapshot, []uint{memberID}, club.CurrencyCode, today)[memberID]

	charges, _, err := s.chargeRepo.ListByMember(ctx, memberID, 0, 5)
	if err != nil {
		return nil, err
	}
	chargeResponses := make([]*models.ChargeResponse, len(charges))
	for i, c := range charges {
		chargeResponses[i] = c.ToResponse()
	}

	payments, _, err := s.chargeRepo.ListPaymentsByMember(ctx, memberID, 0, 5)
	if err != nil {
		return nil, err
	}

	return &MemberDashboardData{
		Member:         member,
		Balance:        balance,
		RecentCharges:  chargeResponses,
		RecentPayments: payments,
		Message:        s.notifyService.ComposeBalanceMessage(balance, member.FullName),
	}, nil
}
