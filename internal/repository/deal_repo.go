package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// alive scopes a query to rows that are not soft-deleted. This is the
// default mode; with-deleted readers skip it explicitly.
func alive(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

func (r *DealRepository) Create(ctx context.Context, d *domain.Deal) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id int64) (*domain.Deal, error) {
	return r.getByID(ctx, id, false)
}

func (r *DealRepository) GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Deal, error) {
	return r.getByID(ctx, id, true)
}

func (r *DealRepository) getByID(ctx context.Context, id int64, withDeleted bool) (*domain.Deal, error) {
	q := r.db.WithContext(ctx)
	if !withDeleted {
		q = alive(q)
	}
	var d domain.Deal
	tx := q.First(&d, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &d, nil
}

type DealFilter struct {
	Status         domain.DealStatus
	ClientID       *int64
	SellerID       *int64
	Unpaid         bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// List returns deals matching the filter, newest first. The unpaid filter
// keeps deals having at least one alive payment with no dated financial
// record attached.
func (r *DealRepository) List(ctx context.Context, f DealFilter) ([]domain.Deal, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Deal{})
	if !f.IncludeDeleted {
		q = alive(q)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	if f.Unpaid {
		q = q.Where(`EXISTS (
			SELECT 1 FROM payments p
			WHERE p.deal_id = deals.id
			  AND p.deleted_at IS NULL
			  AND NOT EXISTS (
				SELECT 1 FROM financial_records fr
				WHERE fr.payment_id = p.id
				  AND fr.deleted_at IS NULL
				  AND fr.conducted_at IS NOT NULL
			  )
		)`)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var deals []domain.Deal
	if err := q.Order("created_at DESC, id DESC").Find(&deals).Error; err != nil {
		return nil, 0, err
	}
	return deals, total, nil
}

// Candidates returns the pool the similarity engine scores against.
func (r *DealRepository) Candidates(ctx context.Context, includeClosed, includeDeleted bool) ([]domain.Deal, error) {
	q := r.db.WithContext(ctx).Model(&domain.Deal{})
	if !includeDeleted {
		q = alive(q)
	}
	if !includeClosed {
		q = q.Where("status NOT IN ?", closingStatuses)
	}
	var deals []domain.Deal
	if err := q.Order("id ASC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

var closingStatuses = []domain.DealStatus{domain.DealWon, domain.DealLost}

// CloseDeal moves the deal into a closing status, persisting only the
// closing fields. The status guard lives in the UPDATE itself so two
// racing closers cannot both win; returns false when the deal was already
// closed or deleted.
func (r *DealRepository) CloseDeal(ctx context.Context, id int64, status domain.DealStatus, reason string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ? AND deleted_at IS NULL AND status NOT IN ?", id, closingStatuses).
		Updates(map[string]any{
			"status":         status,
			"closing_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	return tx.RowsAffected > 0, tx.Error
}

// ReopenDeal returns a closed deal to open and clears the closing reason.
// Guarded the same way as CloseDeal: only a currently closed, alive deal
// is touched.
func (r *DealRepository) ReopenDeal(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ? AND deleted_at IS NULL AND status IN ?", id, closingStatuses).
		Updates(map[string]any{
			"status":         domain.DealOpen,
			"closing_reason": "",
			"updated_at":     time.Now().UTC(),
		})
	return tx.RowsAffected > 0, tx.Error
}

// cascadeSpared is the declared list of child kinds a deal cascade must
// leave untouched. Removing an entry here changes product behavior.
var cascadeSpared = []string{
	domain.ObjectTask,
	domain.ObjectNote,
	domain.ObjectDocument,
}

// CascadeSpared exposes the spared kinds so callers and tests can assert
// the exception instead of rediscovering it.
func CascadeSpared() []string {
	out := make([]string, len(cascadeSpared))
	copy(out, cascadeSpared)
	return out
}

// SoftDeleteCascade soft-deletes the deal together with its policies,
// payments (attached by deal or by one of those policies) and the
// financial records of those payments. Runs in one transaction so readers
// never observe a half-cascaded deal. Each per-kind update only touches
// rows with a null deleted_at, which makes a retried cascade harmless.
func (r *DealRepository) SoftDeleteCascade(ctx context.Context, dealID int64) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var policyIDs []int64
		if err := tx.Model(&domain.Policy{}).
			Where("deal_id = ?", dealID).
			Pluck("id", &policyIDs).Error; err != nil {
			return err
		}

		paymentQ := tx.Model(&domain.Payment{}).Where("deal_id = ?", dealID)
		if len(policyIDs) > 0 {
			paymentQ = tx.Model(&domain.Payment{}).
				Where("deal_id = ? OR policy_id IN ?", dealID, policyIDs)
		}
		var paymentIDs []int64
		if err := paymentQ.Pluck("id", &paymentIDs).Error; err != nil {
			return err
		}

		var recordIDs []int64
		if len(paymentIDs) > 0 {
			if err := tx.Model(&domain.FinancialRecord{}).
				Where("payment_id IN ?", paymentIDs).
				Pluck("id", &recordIDs).Error; err != nil {
				return err
			}
		}

		if err := softDeleteByIDs(tx, &domain.Policy{}, policyIDs, now); err != nil {
			return err
		}
		if err := softDeleteByIDs(tx, &domain.Payment{}, paymentIDs, now); err != nil {
			return err
		}
		if err := softDeleteByIDs(tx, &domain.FinancialRecord{}, recordIDs, now); err != nil {
			return err
		}

		return tx.Model(&domain.Deal{}).
			Where("id = ? AND deleted_at IS NULL", dealID).
			Update("deleted_at", now).Error
	})
}

// softDeleteByIDs stamps deleted_at on the given rows, skipping ones that
// already carry a timestamp. An empty id list is a no-op.
func softDeleteByIDs(tx *gorm.DB, model any, ids []int64, ts time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(model).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Update("deleted_at", ts).Error
}

// Restore clears the soft-delete timestamp of a deal.
func (r *DealRepository) Restore(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}
