package domain

import (
	"testing"
	"time"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  string
	}{
		{"single digit month", 2025, 3, "2025-03"},
		{"double digit month", 2025, 12, "2025-12"},
		{"january", 2024, 1, "2024-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodKey(tt.year, tt.month)
			if got != tt.want {
				t.Errorf("PeriodKey(%d, %d) = %q, want %q", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestParsePeriodKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{"valid", "2025-03", 2025, 3, false},
		{"december", "2024-12", 2024, 12, false},
		{"month zero", "2025-00", 0, 0, true},
		{"month thirteen", "2025-13", 0, 0, true},
		{"garbage", "banana", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := ParsePeriodKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriodKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("ParsePeriodKey(%q) = (%d, %d), want (%d, %d)",
					tt.key, year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestPeriodKeyRoundTrip(t *testing.T) {
	for month := 1; month <= 12; month++ {
		key := PeriodKey(2025, month)
		year, gotMonth, err := ParsePeriodKey(key)
		if err != nil {
			t.Fatalf("ParsePeriodKey(%q) unexpected error: %v", key, err)
		}
		if year != 2025 || gotMonth != month {
			t.Errorf("round trip of (2025, %d) via %q = (%d, %d)", month, key, year, gotMonth)
		}
	}
}

func TestValidateActiveMonths(t *testing.T) {
	tests := []struct {
		name    string
		months  []int
		wantErr bool
	}{
		{"empty", []int{}, false},
		{"all twelve", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, false},
		{"subset", []int{1, 6, 12}, false},
		{"duplicate", []int{3, 3}, true},
		{"zero", []int{0, 1}, true},
		{"thirteen", []int{13}, true},
		{"negative", []int{-1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateActiveMonths(tt.months)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateActiveMonths(%v) error = %v, wantErr %v", tt.months, err, tt.wantErr)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(2025, 3)
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthStart(2025, 3) = %v, want %v", got, want)
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2025, time.June, 15, 18, 42, 7, 123, time.UTC)
	got := DateOf(in)
	want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf(%v) = %v, want %v", in, got, want)
	}
}

func TestIsStorageError(t *testing.T) {
	plain := ErrInvalidAmount
	wrapped := NewStorageError("create charge", ErrInternalServer)

	if IsStorageError(plain) {
		t.Errorf("IsStorageError(%v) = true, want false", plain)
	}
	if !IsStorageError(wrapped) {
		t.Errorf("IsStorageError(%v) = false, want true", wrapped)
	}
}
