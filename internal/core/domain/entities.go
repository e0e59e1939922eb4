package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleTreasurer Role = "TREASURER"
	RoleAdmin     Role = "ADMIN"
)

// MemberBalance is a member's financial position derived from the current
// charge and payment records. It is never persisted; recomputation is the
// only update path, so it cannot drift from the underlying records.
type MemberBalance struct {
	MemberID       uint            `json:"member_id"`
	CurrencyCode   string          `json:"currency_code"`
	TotalOwed      decimal.Decimal `json:"total_owed"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	OverdueCharges decimal.Decimal `json:"overdue_charges"`
	Balance        decimal.Decimal `json:"balance"`
}

// PeriodKey encodes a billing period as "YYYY-MM". A recurring charge
// carries exactly one period key; the storage layer enforces uniqueness of
// (member, period key) so generation stays idempotent.
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParsePeriodKey is the inverse of PeriodKey.
func ParsePeriodKey(key string) (year, month int, err error) {
	if _, err = fmt.Sscanf(key, "%4d-%2d", &year, &month); err != nil {
		return 0, 0, fmt.Errorf("invalid period key %q", key)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid period key %q", key)
	}
	return year, month, nil
}

// MonthStart returns the first calendar day of the given month at midnight
// UTC. Recurring charges fall due on this date.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates a point in time to its calendar date in UTC. Due-date
// comparisons are done on calendar dates only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateActiveMonths checks that months are unique and within 1..12.
func ValidateActiveMonths(months []int) error {
	seen := make(map[int]bool, len(months))
	for _, m := range months {
		if m < 1 || m > 12 {
			return ErrInvalidActiveMonths
		}
		if seen[m] {
			return ErrInvalidActiveMonths
		}
		seen[m] = true
	}
	return nil
}
