package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Document, error) {
	var docs []domain.Document
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) UpdateFolder(ctx context.Context, id int64, folderID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ?", id).
		Update("folder_id", folderID).Error
}
