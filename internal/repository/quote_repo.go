package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuoteRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&quotes).Error
	return quotes, err
}

// ListByDealWithDeleted keeps soft-deleted quotes in the result, used by
// the similarity engine and the history aggregator.
func (r *QuoteRepository) ListByDealWithDeleted(ctx context.Context, dealID int64) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&quotes).Error
	return quotes, err
}
