package services

import (
	"strings"
	"testing"

	"clubledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

func memberBalance(balance, overdue string) *domain.MemberBalance {
	return &domain.MemberBalance{
		MemberID:       1,
		CurrencyCode:   "EUR",
		OverdueCharges: decimal.RequireFromString(overdue),
		Balance:        decimal.RequireFromString(balance),
	}
}

func TestComposeBalanceMessage(t *testing.T) {
	svc := NewNotificationService()

	tests := []struct {
		name         string
		balance      *domain.MemberBalance
		wantContains []string
	}{
		{
			name:    "paid up at zero",
			balance: memberBalance("0", "0"),
			wantContains: []string{
				"Membership dues",
				"Member: Ana",
				"Balance: 0.00 EUR",
				"You are all paid up",
			},
		},
		{
			name:    "paid up with credit",
			balance: memberBalance("5.5", "0"),
			wantContains: []string{
				"Membership dues",
				"Balance: 5.50 EUR",
				"You are all paid up",
			},
		},
		{
			name:    "overdue",
			balance: memberBalance("-30", "30"),
			wantContains: []string{
				"Payment overdue",
				"Member: Ana",
				"Total outstanding: 30.00 EUR",
				"Overdue: 30.00 EUR",
				"settle the overdue amount",
			},
		},
		{
			name:    "partially overdue shows both figures",
			balance: memberBalance("-30", "12.3"),
			wantContains: []string{
				"Payment overdue",
				"Total outstanding: 30.00 EUR",
				"Overdue: 12.30 EUR",
			},
		},
		{
			name:    "pending",
			balance: memberBalance("-30.5", "0"),
			wantContains: []string{
				"Payment due",
				"Member: Ana",
				"Total outstanding: 30.50 EUR",
				"Nothing is overdue yet",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ComposeBalanceMessage(tt.balance, "Ana")
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("message missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestComposeBalanceMessageTemplatesAreDistinct(t *testing.T) {
	svc := NewNotificationService()

	paidUp := svc.ComposeBalanceMessage(memberBalance("0", "0"), "Ana")
	overdue := svc.ComposeBalanceMessage(memberBalance("-30", "30"), "Ana")
	pending := svc.ComposeBalanceMessage(memberBalance("-30", "0"), "Ana")

	if paidUp == overdue || paidUp == pending || overdue == pending {
		t.Error("expected three distinct message templates")
	}
}
