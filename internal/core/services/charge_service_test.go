package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var chargeNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func setupChargeTest(t *testing.T) (*ChargeService, *repositories.Stores, uint) {
	t.Helper()

	stores := repositories.NewMemoryStores()
	club := &models.Club{Name: "Riverside Chess Club", CurrencyCode: "EUR"}
	if err := stores.Clubs.Create(context.Background(), club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	svc := NewChargeService(stores.Charges, stores.Members, stores.Clubs, clock.Fixed(chargeNow))
	return svc, stores, club.ID
}

func validChargeInput(memberIDs ...uint) *CreateCustomChargeInput {
	return &CreateCustomChargeInput{
		Description: "Tournament entry",
		Amount:      decimal.NewFromInt(25),
		DueDate:     "2025-12-31",
		MemberIDs:   memberIDs,
	}
}

func TestCreateCustomChargeValidationOrder(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	seedEligibleMembers(t, stores, clubID, 1)

	// Every later field is also invalid; the earliest check must win
	tests := []struct {
		name    string
		input   *CreateCustomChargeInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   &CreateCustomChargeInput{},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   &CreateCustomChargeInput{Amount: decimal.NewFromInt(-5)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "blank description",
			input:   &CreateCustomChargeInput{Amount: decimal.NewFromInt(25), Description: "   "},
			wantErr: domain.ErrMissingDescription,
		},
		{
			name:    "missing due date",
			input:   &CreateCustomChargeInput{Amount: decimal.NewFromInt(25), Description: "Tournament entry"},
			wantErr: domain.ErrMissingDueDate,
		},
		{
			name: "malformed due date",
			input: &CreateCustomChargeInput{
				Amount:      decimal.NewFromInt(25),
				Description: "Tournament entry",
				DueDate:     "31/12/2025",
			},
			wantErr: domain.ErrInvalidDateFormat,
		},
		{
			name: "no targets",
			input: &CreateCustomChargeInput{
				Amount:      decimal.NewFromInt(25),
				Description: "Tournament entry",
				DueDate:     "2025-12-31",
			},
			wantErr: domain.ErrNoMembersSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomCharge(context.Background(), clubID, tt.input, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateCustomCharge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateCustomChargeApplyToAll(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	seedEligibleMembers(t, stores, clubID, 5)

	ineligible := &models.Member{
		ClubID:         clubID,
		FullName:       "Lapsed Member",
		Email:          "lapsed@club.test",
		IsActive:       false,
		ApprovalStatus: models.ApprovalConfirmed,
	}
	if err := stores.Members.Create(context.Background(), ineligible); err != nil {
		t.Fatalf("create member: %v", err)
	}

	input := validChargeInput()
	input.ApplyToAll = true
	charge, err := svc.CreateCustomCharge(context.Background(), clubID, input, 7)
	if err != nil {
		t.Fatalf("CreateCustomCharge failed: %v", err)
	}

	if charge.Kind != models.ChargeKindCustom {
		t.Errorf("kind = %q, want %q", charge.Kind, models.ChargeKindCustom)
	}
	if charge.PeriodKey != nil {
		t.Errorf("period key = %q, want none for a custom charge", *charge.PeriodKey)
	}
	if charge.CurrencyCode != "EUR" {
		t.Errorf("currency = %q, want the club's %q", charge.CurrencyCode, "EUR")
	}
	if want := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC); !charge.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", charge.DueDate, want)
	}
	if len(charge.Targets) != 5 {
		t.Fatalf("charge has %d targets, want the 5 eligible members", len(charge.Targets))
	}
	for _, target := range charge.Targets {
		if target.MemberID == ineligible.ID {
			t.Errorf("charge targets ineligible member %d", ineligible.ID)
		}
	}
}

func TestCreateCustomChargeSnapshotStable(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	seedEligibleMembers(t, stores, clubID, 3)

	input := validChargeInput()
	input.ApplyToAll = true
	charge, err := svc.CreateCustomCharge(context.Background(), clubID, input, 7)
	if err != nil {
		t.Fatalf("CreateCustomCharge failed: %v", err)
	}

	// A member joining afterwards must not appear on the earlier charge
	late := &models.Member{
		ClubID:         clubID,
		FullName:       "Late Joiner",
		Email:          "late@club.test",
		IsActive:       true,
		ApprovalStatus: models.ApprovalConfirmed,
	}
	if err := stores.Members.Create(context.Background(), late); err != nil {
		t.Fatalf("create member: %v", err)
	}

	stored, err := svc.GetByID(context.Background(), charge.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(stored.Targets) != 3 {
		t.Errorf("stored charge has %d targets, want the original 3", len(stored.Targets))
	}
}

func TestCreateCustomChargeExplicitTargets(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	members := seedEligibleMembers(t, stores, clubID, 2)

	otherClub := &models.Club{Name: "Harbor Rowing Club", CurrencyCode: "EUR"}
	if err := stores.Clubs.Create(context.Background(), otherClub); err != nil {
		t.Fatalf("create club: %v", err)
	}
	outsider := seedEligibleMembers(t, stores, otherClub.ID, 1)[0]

	t.Run("duplicate ids collapse", func(t *testing.T) {
		charge, err := svc.CreateCustomCharge(context.Background(), clubID,
			validChargeInput(members[0].ID, members[0].ID, members[1].ID), 7)
		if err != nil {
			t.Fatalf("CreateCustomCharge failed: %v", err)
		}
		if len(charge.Targets) != 2 {
			t.Errorf("charge has %d targets, want 2 after deduplication", len(charge.Targets))
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.CreateCustomCharge(context.Background(), clubID, validChargeInput(999), 7)
		if !errors.Is(err, ErrMemberNotFound) {
			t.Errorf("CreateCustomCharge() error = %v, want %v", err, ErrMemberNotFound)
		}
	})

	t.Run("member from another club", func(t *testing.T) {
		_, err := svc.CreateCustomCharge(context.Background(), clubID, validChargeInput(outsider.ID), 7)
		if !errors.Is(err, ErrMemberNotInClub) {
			t.Errorf("CreateCustomCharge() error = %v, want %v", err, ErrMemberNotInClub)
		}
	})
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	members := seedEligibleMembers(t, stores, clubID, 2)
	payer, other := members[0], members[1]

	otherClub := &models.Club{Name: "Harbor Rowing Club", CurrencyCode: "EUR"}
	if err := stores.Clubs.Create(context.Background(), otherClub); err != nil {
		t.Fatalf("create club: %v", err)
	}
	outsider := seedEligibleMembers(t, stores, otherClub.ID, 1)[0]

	otherMembersCharge, err := svc.CreateCustomCharge(context.Background(), clubID, validChargeInput(other.ID), 7)
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	foreignCharge, err := svc.CreateCustomCharge(context.Background(), otherClub.ID, validChargeInput(outsider.ID), 7)
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}

	tests := []struct {
		name    string
		input   *RecordPaymentInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   &RecordPaymentInput{MemberID: payer.ID},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown member",
			input:   &RecordPaymentInput{MemberID: 999, Amount: decimal.NewFromInt(10)},
			wantErr: ErrMemberNotFound,
		},
		{
			name:    "member from another club",
			input:   &RecordPaymentInput{MemberID: outsider.ID, Amount: decimal.NewFromInt(10)},
			wantErr: ErrMemberNotInClub,
		},
		{
			name: "linked charge unknown",
			input: &RecordPaymentInput{
				MemberID: payer.ID,
				Amount:   decimal.NewFromInt(10),
				ChargeID: chargeID(999),
			},
			wantErr: ErrChargeNotFound,
		},
		{
			name: "linked charge from another club",
			input: &RecordPaymentInput{
				MemberID: payer.ID,
				Amount:   decimal.NewFromInt(10),
				ChargeID: chargeID(foreignCharge.ID),
			},
			wantErr: ErrChargeNotFound,
		},
		{
			name: "linked charge does not target the payer",
			input: &RecordPaymentInput{
				MemberID: payer.ID,
				Amount:   decimal.NewFromInt(10),
				ChargeID: chargeID(otherMembersCharge.ID),
			},
			wantErr: ErrChargeNotTargeted,
		},
		{
			name: "malformed paid at",
			input: &RecordPaymentInput{
				MemberID: payer.ID,
				Amount:   decimal.NewFromInt(10),
				PaidAt:   "yesterday",
			},
			wantErr: domain.ErrInvalidDateFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(context.Background(), clubID, tt.input, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordPayment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func chargeID(id uint) *uint {
	return &id
}

func TestRecordPayment(t *testing.T) {
	svc, stores, clubID := setupChargeTest(t)
	payer := seedEligibleMembers(t, stores, clubID, 1)[0]

	charge, err := svc.CreateCustomCharge(context.Background(), clubID, validChargeInput(payer.ID), 7)
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}

	t.Run("paid at defaults to today", func(t *testing.T) {
		payment, err := svc.RecordPayment(context.Background(), clubID,
			&RecordPaymentInput{MemberID: payer.ID, Amount: decimal.NewFromInt(10)}, 7)
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		if !payment.PaidAt.Equal(chargeNow) {
			t.Errorf("paid at = %v, want the clock's %v", payment.PaidAt, chargeNow)
		}
		if payment.ChargeID != nil {
			t.Errorf("charge id = %d, want unlinked", *payment.ChargeID)
		}
	})

	t.Run("explicit paid at is parsed as UTC", func(t *testing.T) {
		payment, err := svc.RecordPayment(context.Background(), clubID,
			&RecordPaymentInput{MemberID: payer.ID, Amount: decimal.NewFromInt(10), PaidAt: "2025-06-01"}, 7)
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC); !payment.PaidAt.Equal(want) {
			t.Errorf("paid at = %v, want %v", payment.PaidAt, want)
		}
	})

	t.Run("linked payment keeps the charge reference", func(t *testing.T) {
		payment, err := svc.RecordPayment(context.Background(), clubID,
			&RecordPaymentInput{MemberID: payer.ID, Amount: decimal.NewFromInt(25), ChargeID: chargeID(charge.ID)}, 7)
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		if payment.ChargeID == nil || *payment.ChargeID != charge.ID {
			t.Errorf("payment not linked to charge %d", charge.ID)
		}
	})

	t.Run("every payment gets a distinct receipt reference", func(t *testing.T) {
		first, err := svc.RecordPayment(context.Background(), clubID,
			&RecordPaymentInput{MemberID: payer.ID, Amount: decimal.NewFromInt(5)}, 7)
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		second, err := svc.RecordPayment(context.Background(), clubID,
			&RecordPaymentInput{MemberID: payer.ID, Amount: decimal.NewFromInt(5)}, 7)
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		if _, err := uuid.Parse(first.Reference); err != nil {
			t.Errorf("reference %q is not a UUID: %v", first.Reference, err)
		}
		if first.Reference == second.Reference {
			t.Errorf("two payments share reference %q", first.Reference)
		}
	})
}
