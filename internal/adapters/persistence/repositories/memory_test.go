package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clubledger/internal/adapters/persistence/models"
)

func periodPtr(key string) *string {
	return &key
}

// recurringCharge builds a fresh generated-fee charge; inserts mutate the
// passed struct, so every attempt needs its own value
func recurringCharge(clubID, memberID uint, periodKey string, due time.Time) *models.Charge {
	return &models.Charge{
		ClubID:       clubID,
		Kind:         models.ChargeKindRecurring,
		Description:  "Membership fee " + periodKey,
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "EUR",
		DueDate:      due,
		PeriodKey:    periodPtr(periodKey),
		CreatedBy:    1,
		Targets:      []models.ChargeTarget{{MemberID: memberID, PeriodKey: periodPtr(periodKey)}},
	}
}

func customCharge(clubID uint, due time.Time, memberIDs ...uint) *models.Charge {
	targets := make([]models.ChargeTarget, len(memberIDs))
	for i, id := range memberIDs {
		targets[i] = models.ChargeTarget{MemberID: id}
	}
	return &models.Charge{
		ClubID:       clubID,
		Kind:         models.ChargeKindCustom,
		Description:  "Equipment",
		Amount:       decimal.NewFromInt(25),
		CurrencyCode: "EUR",
		DueDate:      due,
		CreatedBy:    1,
		Targets:      targets,
	}
}

func payment(clubID, memberID uint, amount, reference string, paidAt time.Time) *models.Payment {
	return &models.Payment{
		ClubID:     clubID,
		MemberID:   memberID,
		Amount:     decimal.RequireFromString(amount),
		PaidAt:     paidAt,
		Reference:  reference,
		RecordedBy: 1,
	}
}

func TestCreateRecurringChargeCollision(t *testing.T) {
	stores := NewMemoryStores()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := stores.Charges.CreateRecurringCharge(context.Background(), recurringCharge(1, 1, "2025-01", due)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	// Same member and period collides regardless of the rest of the row
	err := stores.Charges.CreateRecurringCharge(context.Background(), recurringCharge(1, 1, "2025-01", due))
	if !errors.Is(err, ErrDuplicateCharge) {
		t.Errorf("duplicate insert error = %v, want %v", err, ErrDuplicateCharge)
	}

	if err := stores.Charges.CreateRecurringCharge(context.Background(), recurringCharge(1, 1, "2025-02", due)); err != nil {
		t.Errorf("different period should not collide: %v", err)
	}
	if err := stores.Charges.CreateRecurringCharge(context.Background(), recurringCharge(1, 2, "2025-01", due)); err != nil {
		t.Errorf("different member should not collide: %v", err)
	}

	_, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 3 {
		t.Errorf("stored charges = %d, want 3", total)
	}
}

func TestCustomChargesNeverCollide(t *testing.T) {
	stores := NewMemoryStores()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// No period key means the idempotency index never applies, even for
	// identical rows
	for i := 0; i < 2; i++ {
		if err := stores.Charges.CreateCustomCharge(context.Background(), customCharge(1, due, 1)); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	_, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 2 {
		t.Errorf("stored charges = %d, want 2", total)
	}
}

func TestCreatePaymentDuplicateReference(t *testing.T) {
	stores := NewMemoryStores()
	paidAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := stores.Charges.CreatePayment(context.Background(), payment(1, 1, "10", "ref-1", paidAt)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := stores.Charges.CreatePayment(context.Background(), payment(1, 2, "20", "ref-1", paidAt))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate reference error = %v, want %v", err, gorm.ErrDuplicatedKey)
	}

	if err := stores.Charges.CreatePayment(context.Background(), payment(1, 2, "20", "ref-2", paidAt)); err != nil {
		t.Errorf("distinct reference should insert: %v", err)
	}
}

func TestCreateUserUniqueness(t *testing.T) {
	stores := NewMemoryStores()

	first := &models.User{ClubID: 1, Username: "treasurer", Email: "treasurer@club.test", Password: "x"}
	if err := stores.Users.Create(context.Background(), first); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	tests := []struct {
		name string
		user *models.User
	}{
		{
			name: "username differs only in case",
			user: &models.User{ClubID: 1, Username: "Treasurer", Email: "other@club.test", Password: "x"},
		},
		{
			name: "email differs only in case",
			user: &models.User{ClubID: 1, Username: "other", Email: "TREASURER@club.test", Password: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := stores.Users.Create(context.Background(), tt.user)
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				t.Errorf("Create() error = %v, want %v", err, gorm.ErrDuplicatedKey)
			}
		})
	}

	distinct := &models.User{ClubID: 1, Username: "secretary", Email: "secretary@club.test", Password: "x"}
	if err := stores.Users.Create(context.Background(), distinct); err != nil {
		t.Errorf("distinct user should insert: %v", err)
	}
}

func TestLedgerSnapshot(t *testing.T) {
	stores := NewMemoryStores()
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	jan3 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	// Insertion order deliberately disagrees with due order
	lateCharge := customCharge(1, jan2, 1)
	firstDue := customCharge(1, jan1, 2)
	secondDue := customCharge(1, jan1, 1)
	foreign := customCharge(2, jan1, 3)
	for _, c := range []*models.Charge{lateCharge, firstDue, secondDue, foreign} {
		if err := stores.Charges.CreateCustomCharge(context.Background(), c); err != nil {
			t.Fatalf("create charge: %v", err)
		}
	}

	for _, p := range []*models.Payment{
		payment(1, 1, "10", "ref-1", jan3),
		payment(1, 1, "10", "ref-2", jan1),
		payment(1, 2, "10", "ref-3", jan2),
		payment(2, 3, "10", "ref-4", jan1),
	} {
		if err := stores.Charges.CreatePayment(context.Background(), p); err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	t.Run("whole club", func(t *testing.T) {
		snapshot, err := stores.Charges.Ledger(context.Background(), 1, nil)
		if err != nil {
			t.Fatalf("Ledger failed: %v", err)
		}

		wantCharges := []uint{firstDue.ID, secondDue.ID, lateCharge.ID}
		if len(snapshot.Charges) != len(wantCharges) {
			t.Fatalf("snapshot has %d charges, want %d", len(snapshot.Charges), len(wantCharges))
		}
		for i, want := range wantCharges {
			if snapshot.Charges[i].ID != want {
				t.Errorf("charge[%d] = id %d, want %d (due date asc, id asc)", i, snapshot.Charges[i].ID, want)
			}
		}

		wantRefs := []string{"ref-2", "ref-3", "ref-1"}
		if len(snapshot.Payments) != len(wantRefs) {
			t.Fatalf("snapshot has %d payments, want %d", len(snapshot.Payments), len(wantRefs))
		}
		for i, want := range wantRefs {
			if snapshot.Payments[i].Reference != want {
				t.Errorf("payment[%d] = %s, want %s (paid at asc)", i, snapshot.Payments[i].Reference, want)
			}
		}
	})

	t.Run("filtered to one member", func(t *testing.T) {
		snapshot, err := stores.Charges.Ledger(context.Background(), 1, []uint{1})
		if err != nil {
			t.Fatalf("Ledger failed: %v", err)
		}

		wantCharges := []uint{secondDue.ID, lateCharge.ID}
		if len(snapshot.Charges) != len(wantCharges) {
			t.Fatalf("snapshot has %d charges, want %d", len(snapshot.Charges), len(wantCharges))
		}
		for i, want := range wantCharges {
			if snapshot.Charges[i].ID != want {
				t.Errorf("charge[%d] = id %d, want %d", i, snapshot.Charges[i].ID, want)
			}
		}

		wantRefs := []string{"ref-2", "ref-1"}
		if len(snapshot.Payments) != len(wantRefs) {
			t.Fatalf("snapshot has %d payments, want %d", len(snapshot.Payments), len(wantRefs))
		}
		for i, want := range wantRefs {
			if snapshot.Payments[i].Reference != want {
				t.Errorf("payment[%d] = %s, want %s", i, snapshot.Payments[i].Reference, want)
			}
		}
	})
}

func TestListByClubPagination(t *testing.T) {
	stores := NewMemoryStores()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uint
	for i := 0; i < 5; i++ {
		c := customCharge(1, due, 1)
		if err := stores.Charges.CreateCustomCharge(context.Background(), c); err != nil {
			t.Fatalf("create charge: %v", err)
		}
		ids = append(ids, c.ID)
	}

	tests := []struct {
		name    string
		offset  int
		limit   int
		wantLen int
	}{
		{name: "first page", offset: 0, limit: 2, wantLen: 2},
		{name: "last short page", offset: 4, limit: 2, wantLen: 1},
		{name: "offset beyond the end", offset: 10, limit: 2, wantLen: 0},
		{name: "no limit returns everything", offset: 0, limit: 0, wantLen: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charges, total, err := stores.Charges.ListByClub(context.Background(), 1, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("ListByClub failed: %v", err)
			}
			if total != 5 {
				t.Errorf("total = %d, want 5 regardless of the page", total)
			}
			if len(charges) != tt.wantLen {
				t.Errorf("page has %d charges, want %d", len(charges), tt.wantLen)
			}
		})
	}

	t.Run("newest first", func(t *testing.T) {
		charges, _, err := stores.Charges.ListByClub(context.Background(), 1, 0, 1)
		if err != nil {
			t.Fatalf("ListByClub failed: %v", err)
		}
		if want := ids[len(ids)-1]; charges[0].ID != want {
			t.Errorf("first charge = id %d, want the newest %d", charges[0].ID, want)
		}
	})
}

func TestListPaymentsByMemberNewestFirst(t *testing.T) {
	stores := NewMemoryStores()

	for i, day := range []int{2, 1, 3} {
		paidAt := time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
		if err := stores.Charges.CreatePayment(context.Background(), payment(1, 1, "10", "ref-"+string(rune('a'+i)), paidAt)); err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	payments, total, err := stores.Charges.ListPaymentsByMember(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("ListPaymentsByMember failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	for i := 1; i < len(payments); i++ {
		if payments[i].PaidAt.After(payments[i-1].PaidAt) {
			t.Errorf("payments out of order: %v after %v", payments[i].PaidAt, payments[i-1].PaidAt)
		}
	}
}

func TestFeeSettingsPut(t *testing.T) {
	stores := NewMemoryStores()

	if _, err := stores.FeeSettings.GetByClub(context.Background(), 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByClub() error = %v, want %v before any Put", err, gorm.ErrRecordNotFound)
	}

	first := &models.ClubFeeSettings{ClubID: 1, MonthlyAmount: decimal.NewFromInt(10), CurrencyCode: "EUR", IsActive: true}
	if err := stores.FeeSettings.Put(context.Background(), first); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("put did not assign an id")
	}

	second := &models.ClubFeeSettings{ClubID: 1, MonthlyAmount: decimal.NewFromInt(20), CurrencyCode: "USD"}
	if err := stores.FeeSettings.Put(context.Background(), second); err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement got id %d, want the original %d", second.ID, first.ID)
	}

	stored, err := stores.FeeSettings.GetByClub(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByClub failed: %v", err)
	}
	if !stored.MonthlyAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("amount = %s, want the replacement's 20", stored.MonthlyAmount)
	}
	if stored.IsActive {
		t.Error("is_active = true, want the replacement's false")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	stores := NewMemoryStores()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	charge := customCharge(1, due, 1)
	if err := stores.Charges.CreateCustomCharge(context.Background(), charge); err != nil {
		t.Fatalf("create charge: %v", err)
	}

	got, err := stores.Charges.GetByID(context.Background(), charge.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	got.Targets[0].MemberID = 99

	again, err := stores.Charges.GetByID(context.Background(), charge.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.Targets[0].MemberID != 1 {
		t.Error("mutating a returned charge leaked into the store")
	}
}

func TestListEligibleMembers(t *testing.T) {
	stores := NewMemoryStores()

	members := []*models.Member{
		{ClubID: 1, FullName: "Confirmed Active", Email: "a@club.test", IsActive: true, ApprovalStatus: models.ApprovalConfirmed},
		{ClubID: 1, FullName: "Confirmed Inactive", Email: "b@club.test", IsActive: false, ApprovalStatus: models.ApprovalConfirmed},
		{ClubID: 1, FullName: "Pending Active", Email: "c@club.test", IsActive: true, ApprovalStatus: models.ApprovalPending},
		{ClubID: 1, FullName: "Rejected Active", Email: "d@club.test", IsActive: true, ApprovalStatus: models.ApprovalRejected},
		{ClubID: 2, FullName: "Other Club", Email: "e@club.test", IsActive: true, ApprovalStatus: models.ApprovalConfirmed},
	}
	for _, m := range members {
		if err := stores.Members.Create(context.Background(), m); err != nil {
			t.Fatalf("create member: %v", err)
		}
	}

	eligible, err := stores.Members.ListEligible(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListEligible failed: %v", err)
	}
	if len(eligible) != 1 {
		t.Fatalf("eligible members = %d, want only the confirmed active one", len(eligible))
	}
	if eligible[0].ID != members[0].ID {
		t.Errorf("eligible member = id %d, want %d", eligible[0].ID, members[0].ID)
	}
}
