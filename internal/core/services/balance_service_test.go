package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/pkg/clock"

	"github.com/shopspring/decimal"
)

var (
	balanceNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	dueToday   = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	dueEarlier = time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	dueLater   = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
)

func setupBalanceTest(t *testing.T) (*BalanceService, *repositories.Stores, uint) {
	t.Helper()

	stores := repositories.NewMemoryStores()
	club := &models.Club{Name: "Riverside Chess Club", CurrencyCode: "EUR"}
	if err := stores.Clubs.Create(context.Background(), club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	svc := NewBalanceService(stores.Charges, stores.Members, stores.Clubs, clock.Fixed(balanceNow))
	return svc, stores, club.ID
}

func addCharge(t *testing.T, stores *repositories.Stores, clubID uint, due time.Time, amount string, memberIDs ...uint) *models.Charge {
	t.Helper()

	targets := make([]models.ChargeTarget, len(memberIDs))
	for i, id := range memberIDs {
		targets[i] = models.ChargeTarget{MemberID: id}
	}
	charge := &models.Charge{
		ClubID:       clubID,
		Kind:         models.ChargeKindCustom,
		Description:  "Dues",
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: "EUR",
		DueDate:      due,
		CreatedBy:    1,
		Targets:      targets,
	}
	if err := stores.Charges.CreateCustomCharge(context.Background(), charge); err != nil {
		t.Fatalf("create charge: %v", err)
	}
	return charge
}

func addPayment(t *testing.T, stores *repositories.Stores, clubID, memberID uint, linkedTo *uint, amount, ref string) {
	t.Helper()

	payment := &models.Payment{
		ClubID:     clubID,
		MemberID:   memberID,
		ChargeID:   linkedTo,
		Amount:     decimal.RequireFromString(amount),
		PaidAt:     balanceNow,
		Reference:  ref,
		RecordedBy: 1,
	}
	if err := stores.Charges.CreatePayment(context.Background(), payment); err != nil {
		t.Fatalf("create payment: %v", err)
	}
}

func checkAmount(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestGetMemberBalance(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueLater, "30", member.ID)
	addCharge(t, stores, clubID, dueLater, "20", member.ID)
	addPayment(t, stores, clubID, member.ID, nil, "10", "pay-1")
	addPayment(t, stores, clubID, member.ID, nil, "5", "pay-2")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}

	if balance.MemberID != member.ID {
		t.Errorf("member id = %d, want %d", balance.MemberID, member.ID)
	}
	if balance.CurrencyCode != "EUR" {
		t.Errorf("currency = %q, want %q", balance.CurrencyCode, "EUR")
	}
	checkAmount(t, "total owed", balance.TotalOwed, "50")
	checkAmount(t, "total paid", balance.TotalPaid, "15")
	checkAmount(t, "balance", balance.Balance, "-35")
	checkAmount(t, "overdue", balance.OverdueCharges, "0")
}

func TestGetMemberBalanceUnknownMember(t *testing.T) {
	svc, _, _ := setupBalanceTest(t)

	_, err := svc.GetMemberBalance(context.Background(), 999)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("GetMemberBalance() error = %v, want %v", err, ErrMemberNotFound)
	}
}

func TestOverdueCutoff(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)

	// Overdue means due strictly before today, so a charge due today is
	// pending, not overdue
	tests := []struct {
		name        string
		due         time.Time
		wantOverdue string
	}{
		{name: "due yesterday", due: dueEarlier, wantOverdue: "30"},
		{name: "due today", due: dueToday, wantOverdue: "0"},
		{name: "due tomorrow", due: dueLater, wantOverdue: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := seedEligibleMembers(t, stores, clubID, 1)[0]
			addCharge(t, stores, clubID, tt.due, "30", member.ID)

			balance, err := svc.GetMemberBalance(context.Background(), member.ID)
			if err != nil {
				t.Fatalf("GetMemberBalance failed: %v", err)
			}
			checkAmount(t, "overdue", balance.OverdueCharges, tt.wantOverdue)
			checkAmount(t, "balance", balance.Balance, "-30")
		})
	}
}

func TestLinkedPaymentSettlesItsChargeFirst(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueEarlier, "30", member.ID)
	newer := addCharge(t, stores, clubID, dueLater, "20", member.ID)

	// Linked to the newer charge, so the older one stays fully unpaid
	// even though it is due first
	addPayment(t, stores, clubID, member.ID, chargeID(newer.ID), "20", "pay-1")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "overdue", balance.OverdueCharges, "30")
	checkAmount(t, "balance", balance.Balance, "-30")
}

func TestUnlinkedPaymentSettlesOldestFirst(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueEarlier, "30", member.ID)
	addCharge(t, stores, clubID, dueLater, "20", member.ID)

	// Same amount as above, but unlinked: it goes to the oldest due first
	addPayment(t, stores, clubID, member.ID, nil, "20", "pay-1")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "overdue", balance.OverdueCharges, "10")
	checkAmount(t, "balance", balance.Balance, "-30")
}

func TestLinkedExcessJoinsThePool(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueEarlier, "30", member.ID)
	newer := addCharge(t, stores, clubID, dueLater, "20", member.ID)

	// 50 linked to the 20 charge: 20 settles it, the 30 excess clears
	// the older charge through the pool
	addPayment(t, stores, clubID, member.ID, chargeID(newer.ID), "50", "pay-1")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "overdue", balance.OverdueCharges, "0")
	checkAmount(t, "balance", balance.Balance, "0")
}

func TestPartialPaymentLeavesRemainderOverdue(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueEarlier, "30", member.ID)
	addPayment(t, stores, clubID, member.ID, nil, "12.50", "pay-1")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "overdue", balance.OverdueCharges, "17.50")
	checkAmount(t, "balance", balance.Balance, "-17.50")
}

func TestOverpaymentShowsAsCredit(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	addCharge(t, stores, clubID, dueEarlier, "30", member.ID)
	addPayment(t, stores, clubID, member.ID, nil, "40", "pay-1")

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "overdue", balance.OverdueCharges, "0")
	checkAmount(t, "balance", balance.Balance, "10")
}

func TestSharedChargeCountsFullAmountPerMember(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	members := seedEligibleMembers(t, stores, clubID, 2)

	addCharge(t, stores, clubID, dueLater, "30", members[0].ID, members[1].ID)

	for _, m := range members {
		balance, err := svc.GetMemberBalance(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("GetMemberBalance failed: %v", err)
		}
		checkAmount(t, "total owed", balance.TotalOwed, "30")
	}
}

func TestMemberWithNoLedger(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	member := seedEligibleMembers(t, stores, clubID, 1)[0]

	balance, err := svc.GetMemberBalance(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetMemberBalance failed: %v", err)
	}
	checkAmount(t, "total owed", balance.TotalOwed, "0")
	checkAmount(t, "total paid", balance.TotalPaid, "0")
	checkAmount(t, "overdue", balance.OverdueCharges, "0")
	checkAmount(t, "balance", balance.Balance, "0")
}

func TestGetAllMembersBalancesMatchesSingleReads(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	members := seedEligibleMembers(t, stores, clubID, 3)

	addCharge(t, stores, clubID, dueEarlier, "30", members[0].ID)
	newer := addCharge(t, stores, clubID, dueLater, "20", members[0].ID)
	addPayment(t, stores, clubID, members[0].ID, chargeID(newer.ID), "20", "pay-1")
	addPayment(t, stores, clubID, members[0].ID, nil, "5", "pay-2")
	addCharge(t, stores, clubID, dueLater, "15", members[1].ID)

	batch, err := svc.GetAllMembersBalances(context.Background(), clubID, nil)
	if err != nil {
		t.Fatalf("GetAllMembersBalances failed: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("batch has %d members, want 3", len(batch))
	}

	for _, m := range members {
		single, err := svc.GetMemberBalance(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("GetMemberBalance failed: %v", err)
		}
		got, ok := batch[m.ID]
		if !ok {
			t.Fatalf("batch has no entry for member %d", m.ID)
		}
		if !got.TotalOwed.Equal(single.TotalOwed) ||
			!got.TotalPaid.Equal(single.TotalPaid) ||
			!got.OverdueCharges.Equal(single.OverdueCharges) ||
			!got.Balance.Equal(single.Balance) {
			t.Errorf("member %d batch = %+v, single read = %+v", m.ID, got, single)
		}
	}
}

func TestGetAllMembersBalancesSelection(t *testing.T) {
	svc, stores, clubID := setupBalanceTest(t)
	members := seedEligibleMembers(t, stores, clubID, 3)

	addCharge(t, stores, clubID, dueLater, "15", members[0].ID)

	batch, err := svc.GetAllMembersBalances(context.Background(), clubID, []uint{members[0].ID})
	if err != nil {
		t.Fatalf("GetAllMembersBalances failed: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch has %d members, want only the requested one", len(batch))
	}
	if _, ok := batch[members[0].ID]; !ok {
		t.Errorf("batch misses requested member %d", members[0].ID)
	}
}

func TestGetAllMembersBalancesEmptyRoster(t *testing.T) {
	svc, _, clubID := setupBalanceTest(t)

	batch, err := svc.GetAllMembersBalances(context.Background(), clubID, nil)
	if err != nil {
		t.Fatalf("GetAllMembersBalances failed: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("batch has %d members, want none for an empty roster", len(batch))
	}
}
