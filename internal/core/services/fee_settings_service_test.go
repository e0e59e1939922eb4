package services

import (
	"context"
	"errors"
	"testing"

	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

func setupSettingsTest(t *testing.T) (*FeeSettingsService, *repositories.Stores, uint) {
	t.Helper()

	stores := repositories.NewMemoryStores()
	club := &models.Club{Name: "Riverside Chess Club", CurrencyCode: "EUR"}
	if err := stores.Clubs.Create(context.Background(), club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	svc := NewFeeSettingsService(stores.FeeSettings, stores.Clubs)
	return svc, stores, club.ID
}

func TestGetFeeSettingsNotConfigured(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	_, err := svc.Get(context.Background(), clubID)
	if !errors.Is(err, ErrFeeSettingsNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrFeeSettingsNotFound)
	}
}

func TestUpdateFeeSettingsValidation(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	tests := []struct {
		name    string
		clubID  uint
		input   *UpdateFeeSettingsInput
		wantErr error
	}{
		{
			name:    "unknown club checked first",
			clubID:  99,
			input:   &UpdateFeeSettingsInput{},
			wantErr: ErrClubNotFound,
		},
		{
			name:    "zero amount",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.Zero, ActiveMonths: []int{1}, IsActive: true},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount below one cent",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromFloat(0.009), ActiveMonths: []int{1}, IsActive: true},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "month zero",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromInt(10), ActiveMonths: []int{0}, IsActive: true},
			wantErr: domain.ErrInvalidActiveMonths,
		},
		{
			name:    "month thirteen",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromInt(10), ActiveMonths: []int{13}, IsActive: true},
			wantErr: domain.ErrInvalidActiveMonths,
		},
		{
			name:    "duplicate months",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromInt(10), ActiveMonths: []int{1, 1}, IsActive: true},
			wantErr: domain.ErrInvalidActiveMonths,
		},
		{
			name:    "active schedule without months",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromInt(10), IsActive: true},
			wantErr: domain.ErrNoActiveMonths,
		},
		{
			name:    "two letter currency",
			clubID:  clubID,
			input:   &UpdateFeeSettingsInput{MonthlyAmount: decimal.NewFromInt(10), CurrencyCode: "EU", ActiveMonths: []int{1}, IsActive: true},
			wantErr: ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tt.clubID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateFeeSettingsNormalizesCurrency(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	settings, err := svc.Update(context.Background(), clubID, &UpdateFeeSettingsInput{
		MonthlyAmount: decimal.NewFromInt(10),
		CurrencyCode:  " usd ",
		ActiveMonths:  []int{1},
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if settings.CurrencyCode != "USD" {
		t.Errorf("currency = %q, want %q", settings.CurrencyCode, "USD")
	}
}

func TestUpdateFeeSettingsDefaultsCurrencyToClub(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	settings, err := svc.Update(context.Background(), clubID, &UpdateFeeSettingsInput{
		MonthlyAmount: decimal.NewFromInt(10),
		ActiveMonths:  []int{1},
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if settings.CurrencyCode != "EUR" {
		t.Errorf("currency = %q, want the club default %q", settings.CurrencyCode, "EUR")
	}
}

func TestUpdateFeeSettingsInactiveAllowsEmptyMonths(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	settings, err := svc.Update(context.Background(), clubID, &UpdateFeeSettingsInput{
		MonthlyAmount: decimal.NewFromInt(10),
		IsActive:      false,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if settings.IsActive {
		t.Error("settings stored active, want inactive")
	}
	if len(settings.ActiveMonths) != 0 {
		t.Errorf("active months = %v, want none", []int(settings.ActiveMonths))
	}
}

func TestUpdateFeeSettingsReplaces(t *testing.T) {
	svc, _, clubID := setupSettingsTest(t)

	first, err := svc.Update(context.Background(), clubID, &UpdateFeeSettingsInput{
		MonthlyAmount: decimal.NewFromInt(25),
		CurrencyCode:  "USD",
		ActiveMonths:  []int{1, 2, 3},
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	// The second update omits the currency: the row is replaced, not
	// merged, so it falls back to the club default instead of keeping USD
	if _, err := svc.Update(context.Background(), clubID, &UpdateFeeSettingsInput{
		MonthlyAmount: decimal.NewFromInt(30),
		ActiveMonths:  []int{6},
		IsActive:      true,
	}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	stored, err := svc.Get(context.Background(), clubID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("settings ID changed from %d to %d across updates", first.ID, stored.ID)
	}
	if !stored.MonthlyAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("amount = %s, want 30", stored.MonthlyAmount)
	}
	if stored.CurrencyCode != "EUR" {
		t.Errorf("currency = %q, want %q after replacement", stored.CurrencyCode, "EUR")
	}
	if months := []int(stored.ActiveMonths); len(months) != 1 || months[0] != 6 {
		t.Errorf("active months = %v, want [6]", months)
	}
}
