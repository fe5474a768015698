package audit

import (
	"context"
	"log"

	"brokercrm/internal/domain"
	"brokercrm/internal/repository"
)

// Actions recorded by mutating operations.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionClose    = "close"
	ActionReopen   = "reopen"
	ActionDelete   = "delete"
	ActionComplete = "complete"
)

type Store interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
	QueryByObjects(ctx context.Context, refs []repository.ObjectRef) ([]domain.AuditLog, error)
}

// Service is the explicit write-through audit log. Mutating operations
// call Record directly instead of relying on save hooks, which keeps the
// entry order deterministic.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record appends one entry. Failures are logged and swallowed: an audit
// write must never fail the mutation it describes.
func (s *Service) Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64) {
	entry := &domain.AuditLog{
		ObjectType:  objectType,
		ObjectID:    objectID,
		Action:      action,
		ObjectName:  objectName,
		Description: description,
		ActorID:     actorID,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		log.Printf("audit: append failed for %s/%s %s: %v", objectType, objectID, action, err)
	}
}

// Query reads entries for the given objects in creation order. Unlike
// Record this is a hard dependency: history cannot be served without it.
func (s *Service) Query(ctx context.Context, refs []repository.ObjectRef) ([]domain.AuditLog, error) {
	return s.store.QueryByObjects(ctx, refs)
}
