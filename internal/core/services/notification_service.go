package services

import (
	"fmt"

	"clubledger/internal/core/domain"
)

// NotificationService composes balance notification text. It is a pure
// composer: no store access and no delivery. The UI or an external
// channel (push, WhatsApp) sends whatever this produces.
type NotificationService struct{}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// ComposeBalanceMessage turns a balance snapshot into the message shown
// or sent to the member. Three templates: paid up, overdue, and pending.
// Amounts always carry exactly two decimal places.
func (s *NotificationService) ComposeBalanceMessage(balance *domain.MemberBalance, memberName string) string {
	switch {
	case balance.Balance.Sign() >= 0:
		return s.composePaidUp(balance, memberName)
	case balance.OverdueCharges.IsPositive():
		return s.composeOverdue(balance, memberName)
	default:
		return s.composePending(balance, memberName)
	}
}

// composePaidUp is used when the member owes nothing
func (s *NotificationService) composePaidUp(balance *domain.MemberBalance, memberName string) string {
	return fmt.Sprintf(`
✅ Membership dues

👤 Member: %s
💚 Balance: %s %s

You are all paid up. Thank you!`,
		memberName,
		balance.Balance.StringFixed(2),
		balance.CurrencyCode,
	)
}

// composeOverdue is used when part of the debt is past its due date.
// The overdue amount is shown on its own line, separate from the total
// outstanding amount.
func (s *NotificationService) composeOverdue(balance *domain.MemberBalance, memberName string) string {
	return fmt.Sprintf(`
⚠️ Payment overdue

👤 Member: %s
💸 Total outstanding: %s %s
⏰ Overdue: %s %s

Please settle the overdue amount as soon as possible.`,
		memberName,
		balance.Balance.Neg().StringFixed(2),
		balance.CurrencyCode,
		balance.OverdueCharges.StringFixed(2),
		balance.CurrencyCode,
	)
}

// composePending is used when the member owes money but nothing is
// overdue yet
func (s *NotificationService) composePending(balance *domain.MemberBalance, memberName string) string {
	return fmt.Sprintf(`
📌 Payment due

👤 Member: %s
💸 Total outstanding: %s %s

Nothing is overdue yet. Please pay by the due date.`,
		memberName,
		balance.Balance.Neg().StringFixed(2),
		balance.CurrencyCode,
	)
}
