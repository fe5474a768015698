package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	tx := alive(r.db.WithContext(ctx)).First(&t, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &t, nil
}

func (r *TaskRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// Complete records who closed the task and when.
func (r *TaskRepository) Complete(ctx context.Context, id, actorID int64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]any{
			"completed_by": actorID,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}
