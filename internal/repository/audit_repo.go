package repository

import (
	"context"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// ObjectRef identifies one audited entity.
type ObjectRef struct {
	Type string
	ID   string
}

// Append writes one audit row. Rows are never updated afterwards.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// QueryByObjects returns all entries referencing any of the given objects,
// in creation (id ascending) order. An empty ref list yields an empty
// result, not a full scan.
func (r *AuditRepository) QueryByObjects(ctx context.Context, refs []ObjectRef) ([]domain.AuditLog, error) {
	if len(refs) == 0 {
		return []domain.AuditLog{}, nil
	}

	// Group ids per object type so the query stays portable between
	// postgres and sqlite.
	byType := make(map[string][]string)
	for _, ref := range refs {
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	q := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	var cond *gorm.DB
	for objectType, ids := range byType {
		clause := r.db.Where("object_type = ? AND object_id IN ?", objectType, ids)
		if cond == nil {
			cond = clause
		} else {
			cond = cond.Or(clause)
		}
	}
	q = q.Where(cond)

	var entries []domain.AuditLog
	if err := q.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
