package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NoteRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Note, error) {
	var notes []domain.Note
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&notes).Error
	return notes, err
}
