package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

// RelatedRepository collects ids of entities attached to a deal. Every
// query here deliberately includes soft-deleted rows: the history feed
// must keep showing items after they are gone.
type RelatedRepository struct {
	db *gorm.DB
}

func NewRelatedRepository(db *gorm.DB) *RelatedRepository {
	return &RelatedRepository{db: db}
}

func (r *RelatedRepository) pluckByDeal(ctx context.Context, model any, dealID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(model).
		Where("deal_id = ?", dealID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *RelatedRepository) TaskIDs(ctx context.Context, dealID int64) ([]int64, error) {
	return r.pluckByDeal(ctx, &domain.Task{}, dealID)
}

func (r *RelatedRepository) NoteIDs(ctx context.Context, dealID int64) ([]int64, error) {
	return r.pluckByDeal(ctx, &domain.Note{}, dealID)
}

func (r *RelatedRepository) DocumentIDs(ctx context.Context, dealID int64) ([]int64, error) {
	return r.pluckByDeal(ctx, &domain.Document{}, dealID)
}

func (r *RelatedRepository) QuoteIDs(ctx context.Context, dealID int64) ([]int64, error) {
	return r.pluckByDeal(ctx, &domain.Quote{}, dealID)
}

func (r *RelatedRepository) PolicyIDs(ctx context.Context, dealID int64) ([]int64, error) {
	return r.pluckByDeal(ctx, &domain.Policy{}, dealID)
}

// PaymentIDs covers payments attached to the deal directly or through one
// of its policies.
func (r *RelatedRepository) PaymentIDs(ctx context.Context, dealID int64, policyIDs []int64) ([]int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("deal_id = ?", dealID)
	if len(policyIDs) > 0 {
		q = r.db.WithContext(ctx).Model(&domain.Payment{}).
			Where("deal_id = ? OR policy_id IN ?", dealID, policyIDs)
	}
	var ids []int64
	err := q.Pluck("id", &ids).Error
	return ids, err
}

func (r *RelatedRepository) FinancialRecordIDs(ctx context.Context, paymentIDs []int64) ([]int64, error) {
	if len(paymentIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.FinancialRecord{}).
		Where("payment_id IN ?", paymentIDs).
		Pluck("id", &ids).Error
	return ids, err
}
