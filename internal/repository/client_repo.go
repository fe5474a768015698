package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	tx := alive(r.db.WithContext(ctx)).First(&c, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &c, nil
}

// GetByIDWithDeleted also resolves soft-deleted clients, used by the
// similarity engine so a deleted client still contributes its phone.
func (r *ClientRepository) GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	tx := r.db.WithContext(ctx).First(&c, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]domain.Client, int64, error) {
	q := alive(r.db.WithContext(ctx).Model(&domain.Client{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SoftDelete stamps deleted_at; deleting an already deleted client is a no-op.
func (r *ClientRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now().UTC()).Error
}
