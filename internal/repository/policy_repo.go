package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, p *domain.Policy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PolicyRepository) GetByID(ctx context.Context, id int64) (*domain.Policy, error) {
	var p domain.Policy
	tx := alive(r.db.WithContext(ctx)).First(&p, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PolicyRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Policy, error) {
	var policies []domain.Policy
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&policies).Error
	return policies, err
}
