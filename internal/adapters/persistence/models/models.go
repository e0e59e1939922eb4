package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Auth & Account Tables
// ============================================================

// User represents users table (login accounts for treasurers, admins and
// members of a club)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClubID    uint           `gorm:"index;not null" json:"club_id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	ClubID    uint      `json:"club_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	ClubName  string    `json:"club_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		ClubID:    u.ClubID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Club & Roster Tables
// ============================================================

// Club represents clubs table
type Club struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	CurrencyCode string         `gorm:"size:3;not null;default:'EUR'" json:"currency_code"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Club) TableName() string {
	return "clubs"
}

// Approval Status
const (
	ApprovalPending   = "PENDING"
	ApprovalConfirmed = "CONFIRMED"
	ApprovalRejected  = "REJECTED"
)

// Member represents members table (club roster). Roster entries are what
// charges target; they are separate from login accounts.
type Member struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ClubID         uint           `gorm:"index;not null" json:"club_id"`
	FullName       string         `gorm:"size:100;not null" json:"full_name"`
	Email          string         `gorm:"size:100;index" json:"email"`
	Whatsapp       string         `gorm:"size:30" json:"whatsapp"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	ApprovalStatus string         `gorm:"size:20;not null;default:'PENDING'" json:"approval_status"`
	JoinedAt       *time.Time     `json:"joined_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Club *Club `gorm:"foreignKey:ClubID" json:"club,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// IsEligible reports whether fees may be generated for the member: the
// account must be active and approval-confirmed.
func (m *Member) IsEligible() bool {
	return m.IsActive && m.ApprovalStatus == ApprovalConfirmed
}

// ============================================================
// Billing Tables
// ============================================================

// ClubFeeSettings represents club_fee_settings (one row per club). Created
// lazily on the first update and replaced wholesale afterwards, never
// merged field by field.
type ClubFeeSettings struct {
	ID            uint                     `gorm:"primaryKey" json:"id"`
	ClubID        uint                     `gorm:"uniqueIndex;not null" json:"club_id"`
	MonthlyAmount decimal.Decimal          `gorm:"type:decimal(12,2);not null" json:"monthly_amount"`
	CurrencyCode  string                   `gorm:"size:3;not null" json:"currency_code"`
	ActiveMonths  datatypes.JSONSlice[int] `json:"active_months"`
	IsActive      bool                     `gorm:"default:false" json:"is_active"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClubFeeSettings) TableName() string {
	return "club_fee_settings"
}

// Charge Kinds
const (
	ChargeKindRecurring = "RECURRING"
	ChargeKindCustom    = "CUSTOM"
)

// Charge represents charges table. Rows are immutable once created; there
// is no update or delete surface. Paid/overdue status is never stored on
// the row, it is derived from payments on every read.
type Charge struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ClubID       uint            `gorm:"index;not null" json:"club_id"`
	Kind         string          `gorm:"size:20;not null" json:"kind"`
	Description  string          `gorm:"size:200;not null" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CurrencyCode string          `gorm:"size:3;not null" json:"currency_code"`
	DueDate      time.Time       `gorm:"type:date;not null" json:"due_date"`
	PeriodKey    *string         `gorm:"size:7" json:"period_key,omitempty"`
	CreatedBy    uint            `gorm:"not null" json:"created_by"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Club    *Club          `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	Targets []ChargeTarget `gorm:"foreignKey:ChargeID" json:"targets,omitempty"`
}

func (Charge) TableName() string {
	return "charges"
}

// ChargeResponse DTO
type ChargeResponse struct {
	ID           uint            `json:"id"`
	ClubID       uint            `json:"club_id"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	DueDate      string          `json:"due_date"`
	PeriodKey    *string         `json:"period_key,omitempty"`
	MemberIDs    []uint          `json:"member_ids"`
	CreatedBy    uint            `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (c *Charge) ToResponse() *ChargeResponse {
	memberIDs := make([]uint, len(c.Targets))
	for i, t := range c.Targets {
		memberIDs[i] = t.MemberID
	}

	return &ChargeResponse{
		ID:           c.ID,
		ClubID:       c.ClubID,
		Kind:         c.Kind,
		Description:  c.Description,
		Amount:       c.Amount,
		CurrencyCode: c.CurrencyCode,
		DueDate:      c.DueDate.Format("2006-01-02"),
		PeriodKey:    c.PeriodKey,
		MemberIDs:    memberIDs,
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
	}
}

// ChargeTarget links a charge to one member it applies to. The target set
// is snapshotted at creation time; it never re-expands when the roster
// changes. For recurring charges PeriodKey is copied onto the row so the
// unique index on (member_id, period_key) rejects duplicate generation at
// the storage layer; custom charges leave it NULL, and NULLs never collide.
type ChargeTarget struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ChargeID  uint    `gorm:"index;not null" json:"charge_id"`
	MemberID  uint    `gorm:"not null;uniqueIndex:idx_target_member_period" json:"member_id"`
	PeriodKey *string `gorm:"size:7;uniqueIndex:idx_target_member_period" json:"period_key,omitempty"`

	// Relations
	Charge *Charge `gorm:"foreignKey:ChargeID" json:"-"`
	Member *Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (ChargeTarget) TableName() string {
	return "charge_targets"
}

// Payment represents payments table. Append-only: payments are never
// edited or deleted. ChargeID is optional; a payment without one is
// general credit applied oldest-due-first.
type Payment struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ClubID     uint            `gorm:"index;not null" json:"club_id"`
	MemberID   uint            `gorm:"index;not null" json:"member_id"`
	ChargeID   *uint           `gorm:"index" json:"charge_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	Reference  string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	RecordedBy uint            `gorm:"not null" json:"recorded_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// LedgerSnapshot is one consistent read of a club's charge and payment
// records, used by balance aggregation. Charges carry their targets.
type LedgerSnapshot struct {
	Charges  []*Charge
	Payments []*Payment
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Club & roster
		&Club{},
		&Member{},
		// Billing
		&ClubFeeSettings{},
		&Charge{},
		&ChargeTarget{},
		&Payment{},
	)
}
