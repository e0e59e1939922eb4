package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"
	"clubledger/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// generationNow pins the clock so year defaulting is deterministic
var generationNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func setupGenerationTest(t *testing.T) (*FeeGenerationService, *repositories.Stores) {
	t.Helper()

	stores := repositories.NewMemoryStores()
	svc := NewFeeGenerationService(stores.FeeSettings, stores.Members, stores.Charges, clock.Fixed(generationNow))
	return svc, stores
}

func seedEligibleMembers(t *testing.T, stores *repositories.Stores, clubID uint, n int) []*models.Member {
	t.Helper()

	members := make([]*models.Member, n)
	for i := 0; i < n; i++ {
		m := &models.Member{
			ClubID:         clubID,
			FullName:       fmt.Sprintf("Member %02d", i+1),
			Email:          fmt.Sprintf("member%02d@club.test", i+1),
			IsActive:       true,
			ApprovalStatus: models.ApprovalConfirmed,
		}
		if err := stores.Members.Create(context.Background(), m); err != nil {
			t.Fatalf("create member: %v", err)
		}
		members[i] = m
	}
	return members
}

func activeSettings(clubID uint, months ...int) *models.ClubFeeSettings {
	return &models.ClubFeeSettings{
		ClubID:        clubID,
		MonthlyAmount: decimal.NewFromInt(10),
		CurrencyCode:  "EUR",
		ActiveMonths:  datatypes.NewJSONSlice(months),
		IsActive:      true,
	}
}

func TestGenerateMonthlyFees(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 5)
	settings := activeSettings(1, 3, 1, 2) // out of order on purpose

	result, err := svc.GenerateMonthlyFees(context.Background(), 1, members, settings, 2025, 7)
	if err != nil {
		t.Fatalf("GenerateMonthlyFees failed: %v", err)
	}
	if result.Created != 15 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 15 created, 0 skipped", result)
	}

	charges, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 15 {
		t.Fatalf("stored charges = %d, want 15", total)
	}

	perPeriod := make(map[string]int)
	for _, c := range charges {
		if c.Kind != models.ChargeKindRecurring {
			t.Errorf("charge %d kind = %q, want %q", c.ID, c.Kind, models.ChargeKindRecurring)
		}
		if !c.Amount.Equal(decimal.NewFromInt(10)) {
			t.Errorf("charge %d amount = %s, want 10", c.ID, c.Amount)
		}
		if c.PeriodKey == nil {
			t.Fatalf("charge %d has no period key", c.ID)
		}
		year, month, err := domain.ParsePeriodKey(*c.PeriodKey)
		if err != nil {
			t.Fatalf("charge %d period key %q invalid: %v", c.ID, *c.PeriodKey, err)
		}
		if !c.DueDate.Equal(domain.MonthStart(year, month)) {
			t.Errorf("charge %d due %s, want first of %s", c.ID, c.DueDate.Format("2006-01-02"), *c.PeriodKey)
		}
		if want := fmt.Sprintf("Membership fee %s", *c.PeriodKey); c.Description != want {
			t.Errorf("charge %d description = %q, want %q", c.ID, c.Description, want)
		}
		if len(c.Targets) != 1 {
			t.Errorf("charge %d has %d targets, want 1", c.ID, len(c.Targets))
		}
		perPeriod[*c.PeriodKey]++
	}

	for _, key := range []string{"2025-01", "2025-02", "2025-03"} {
		if perPeriod[key] != 5 {
			t.Errorf("period %s has %d charges, want 5", key, perPeriod[key])
		}
	}
}

func TestGenerateMonthlyFeesIdempotent(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 5)
	settings := activeSettings(1, 1, 2, 3)

	first, err := svc.GenerateMonthlyFees(context.Background(), 1, members, settings, 2025, 7)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Created != 15 || first.Skipped != 0 {
		t.Errorf("first run = %+v, want 15 created, 0 skipped", first)
	}

	second, err := svc.GenerateMonthlyFees(context.Background(), 1, members, settings, 2025, 7)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Created != 0 || second.Skipped != 15 {
		t.Errorf("second run = %+v, want 0 created, 15 skipped", second)
	}

	_, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 15 {
		t.Errorf("stored charges = %d, want 15 after rerun", total)
	}
}

func TestGenerateMonthlyFeesResumesPartialRun(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 5)

	if _, err := svc.GenerateMonthlyFees(context.Background(), 1, members, activeSettings(1, 1), 2025, 7); err != nil {
		t.Fatalf("seed run failed: %v", err)
	}

	// A wider schedule only fills the missing months
	result, err := svc.GenerateMonthlyFees(context.Background(), 1, members, activeSettings(1, 1, 2), 2025, 7)
	if err != nil {
		t.Fatalf("resume run failed: %v", err)
	}
	if result.Created != 5 || result.Skipped != 5 {
		t.Errorf("resume run = %+v, want 5 created, 5 skipped", result)
	}

	_, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 10 {
		t.Errorf("stored charges = %d, want 10", total)
	}
}

func TestGenerateMonthlyFeesValidation(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 2)

	tests := []struct {
		name     string
		members  []*models.Member
		settings *models.ClubFeeSettings
		wantErr  error
	}{
		{
			name:     "empty member list checked before settings",
			members:  nil,
			settings: nil,
			wantErr:  domain.ErrEmptyMemberList,
		},
		{
			name:     "nil settings",
			members:  members,
			settings: nil,
			wantErr:  domain.ErrNoActiveMonths,
		},
		{
			name:    "inactive settings",
			members: members,
			settings: &models.ClubFeeSettings{
				ClubID:        1,
				MonthlyAmount: decimal.NewFromInt(10),
				CurrencyCode:  "EUR",
				ActiveMonths:  datatypes.NewJSONSlice([]int{1, 2}),
				IsActive:      false,
			},
			wantErr: domain.ErrNoActiveMonths,
		},
		{
			name:     "active settings without months",
			members:  members,
			settings: activeSettings(1),
			wantErr:  domain.ErrNoActiveMonths,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GenerateMonthlyFees(context.Background(), 1, tt.members, tt.settings, 2025, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateMonthlyFees() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateMonthlyFeesSkipsIneligible(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	eligible := seedEligibleMembers(t, stores, 1, 1)[0]

	inactive := &models.Member{
		ClubID:         1,
		FullName:       "Inactive Member",
		Email:          "inactive@club.test",
		IsActive:       false,
		ApprovalStatus: models.ApprovalConfirmed,
	}
	pending := &models.Member{
		ClubID:         1,
		FullName:       "Pending Member",
		Email:          "pending@club.test",
		IsActive:       true,
		ApprovalStatus: models.ApprovalPending,
	}
	for _, m := range []*models.Member{inactive, pending} {
		if err := stores.Members.Create(context.Background(), m); err != nil {
			t.Fatalf("create member: %v", err)
		}
	}

	roster := []*models.Member{eligible, inactive, pending}
	result, err := svc.GenerateMonthlyFees(context.Background(), 1, roster, activeSettings(1, 1, 2), 2025, 7)
	if err != nil {
		t.Fatalf("GenerateMonthlyFees failed: %v", err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 2 created, 0 skipped", result)
	}

	charges, _, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	for _, c := range charges {
		for _, target := range c.Targets {
			if target.MemberID != eligible.ID {
				t.Errorf("charge %d targets member %d, want only eligible member %d", c.ID, target.MemberID, eligible.ID)
			}
		}
	}
}

func TestGenerateMonthlyFeesDefaultsYear(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 1)

	result, err := svc.GenerateMonthlyFees(context.Background(), 1, members, activeSettings(1, 6), 0, 7)
	if err != nil {
		t.Fatalf("GenerateMonthlyFees failed: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("result = %+v, want 1 created", result)
	}

	charges, _, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if got := *charges[0].PeriodKey; got != "2025-06" {
		t.Errorf("period key = %q, want %q from the clock year", got, "2025-06")
	}
}

func TestGenerateMonthlyFeesConcurrent(t *testing.T) {
	svc, stores := setupGenerationTest(t)
	members := seedEligibleMembers(t, stores, 1, 5)
	settings := activeSettings(1, 1, 2, 3)

	var wg sync.WaitGroup
	results := make([]*GenerationResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GenerateMonthlyFees(context.Background(), 1, members, settings, 2025, 7)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	created := results[0].Created + results[1].Created
	skipped := results[0].Skipped + results[1].Skipped
	if created != 15 || skipped != 15 {
		t.Errorf("combined runs created %d, skipped %d, want 15 and 15", created, skipped)
	}

	_, total, err := stores.Charges.ListByClub(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	if total != 15 {
		t.Errorf("stored charges = %d, want 15 with no duplicates", total)
	}
}

func TestGenerateForClub(t *testing.T) {
	svc, stores := setupGenerationTest(t)

	t.Run("no settings configured", func(t *testing.T) {
		_, err := svc.GenerateForClub(context.Background(), 1, 2025, 7)
		if !errors.Is(err, ErrFeeSettingsNotFound) {
			t.Errorf("GenerateForClub() error = %v, want %v", err, ErrFeeSettingsNotFound)
		}
	})

	if err := stores.FeeSettings.Put(context.Background(), activeSettings(1, 1)); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	t.Run("no eligible members", func(t *testing.T) {
		_, err := svc.GenerateForClub(context.Background(), 1, 2025, 7)
		if !errors.Is(err, domain.ErrEmptyMemberList) {
			t.Errorf("GenerateForClub() error = %v, want %v", err, domain.ErrEmptyMemberList)
		}
	})

	seedEligibleMembers(t, stores, 1, 3)

	t.Run("generates for the eligible roster", func(t *testing.T) {
		result, err := svc.GenerateForClub(context.Background(), 1, 2025, 7)
		if err != nil {
			t.Fatalf("GenerateForClub failed: %v", err)
		}
		if result.Created != 3 || result.Skipped != 0 {
			t.Errorf("result = %+v, want 3 created, 0 skipped", result)
		}
	})
}
