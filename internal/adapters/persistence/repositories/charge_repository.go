package repositories

import (
	"context"
	"errors"

	"clubledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// chargeRepository implements ChargeRepository interface
type chargeRepository struct {
	db *gorm.DB
}

// NewChargeRepository creates a new charge repository
func NewChargeRepository(db *gorm.DB) ChargeRepository {
	return &chargeRepository{db: db}
}

// CreateRecurringCharge inserts one generated charge together with its
// single target row. A collision with the unique index on
// (member_id, period_key) maps to ErrDuplicateCharge so generation counts
// it as skipped. Each charge is inserted in its own transaction on
// purpose: a run that fails halfway leaves the inserted charges behind,
// and the rerun skips them via the same index instead of duplicating.
func (r *chargeRepository) CreateRecurringCharge(ctx context.Context, charge *models.Charge) error {
	err := r.db.WithContext(ctx).Create(charge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCharge
		}
		return storageErr("charges.create", err)
	}
	return nil
}

// CreateCustomCharge inserts a one-off charge and its target rows.
// Targets carry no period key, so they never hit the idempotency index.
func (r *chargeRepository) CreateCustomCharge(ctx context.Context, charge *models.Charge) error {
	return storageErr("charges.create", r.db.WithContext(ctx).Create(charge).Error)
}

// GetByID gets a charge with its targets
func (r *chargeRepository) GetByID(ctx context.Context, id uint) (*models.Charge, error) {
	var charge models.Charge
	err := r.db.WithContext(ctx).Preload("Targets").Where("id = ?", id).First(&charge).Error
	if err != nil {
		return nil, storageErr("charges.get", err)
	}
	return &charge, nil
}

// ListByClub lists a club's charges with pagination, newest first
func (r *chargeRepository) ListByClub(ctx context.Context, clubID uint, offset, limit int) ([]*models.Charge, int64, error) {
	var charges []*models.Charge
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).
		Model(&models.Charge{}).
		Where("club_id = ?", clubID).
		Count(&total).Error; err != nil {
		return nil, 0, storageErr("charges.list", err)
	}

	// Get charges with pagination
	if err := r.db.WithContext(ctx).
		Preload("Targets").
		Where("club_id = ?", clubID).
		Offset(offset).Limit(limit).
		Order("created_at DESC, id DESC").
		Find(&charges).Error; err != nil {
		return nil, 0, storageErr("charges.list", err)
	}

	return charges, total, nil
}

// ListByMember lists charges targeting a member, oldest due first
func (r *chargeRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Charge, int64, error) {
	var charges []*models.Charge
	var total int64

	targeted := r.db.Model(&models.ChargeTarget{}).
		Select("charge_id").
		Where("member_id = ?", memberID)

	// Count total
	if err := r.db.WithContext(ctx).
		Model(&models.Charge{}).
		Where("id IN (?)", targeted).
		Count(&total).Error; err != nil {
		return nil, 0, storageErr("charges.list", err)
	}

	// Get charges with pagination
	if err := r.db.WithContext(ctx).
		Preload("Targets").
		Where("id IN (?)", targeted).
		Offset(offset).Limit(limit).
		Order("due_date ASC, id ASC").
		Find(&charges).Error; err != nil {
		return nil, 0, storageErr("charges.list", err)
	}

	return charges, total, nil
}

// CreatePayment appends a payment record
func (r *chargeRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return storageErr("payments.create", r.db.WithContext(ctx).Create(payment).Error)
}

// ListPaymentsByMember lists a member's payments with pagination, newest first
func (r *chargeRepository) ListPaymentsByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("member_id = ?", memberID).
		Count(&total).Error; err != nil {
		return nil, 0, storageErr("payments.list", err)
	}

	// Get payments with pagination
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Offset(offset).Limit(limit).
		Order("paid_at DESC, id DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, storageErr("payments.list", err)
	}

	return payments, total, nil
}

// Ledger reads a club's charges and payments in one transaction so balance
// aggregation works from a single consistent snapshot. An empty memberIDs
// slice means the whole club; otherwise both reads are filtered to the
// given members.
func (r *chargeRepository) Ledger(ctx context.Context, clubID uint, memberIDs []uint) (*models.LedgerSnapshot, error) {
	snapshot := &models.LedgerSnapshot{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chargeQuery := tx.Preload("Targets").Where("club_id = ?", clubID)
		paymentQuery := tx.Where("club_id = ?", clubID)

		if len(memberIDs) > 0 {
			targeted := tx.Model(&models.ChargeTarget{}).
				Select("charge_id").
				Where("member_id IN ?", memberIDs)
			chargeQuery = chargeQuery.Where("id IN (?)", targeted)
			paymentQuery = paymentQuery.Where("member_id IN ?", memberIDs)
		}

		if err := chargeQuery.
			Order("due_date ASC, id ASC").
			Find(&snapshot.Charges).Error; err != nil {
			return err
		}

		return paymentQuery.
			Order("paid_at ASC, id ASC").
			Find(&snapshot.Payments).Error
	})
	if err != nil {
		return nil, storageErr("charges.ledger", err)
	}

	return snapshot, nil
}
