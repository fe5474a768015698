package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) ListByDeal(ctx context.Context, dealID int64, limit int) ([]domain.Message, error) {
	q := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []domain.Message
	err := q.Find(&msgs).Error
	return msgs, err
}
