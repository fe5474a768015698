package task

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"brokercrm/internal/domain"
	"brokercrm/internal/modules/audit"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
)

type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Task, error)
	Complete(ctx context.Context, id, actorID int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64)
}

type Service struct {
	tasks   Repository
	auditor AuditRecorder
}

func NewService(tasks Repository, auditor AuditRecorder) *Service {
	return &Service{tasks: tasks, auditor: auditor}
}

type CreateRequest struct {
	DealID     int64      `json:"deal_id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	AssigneeID *int64     `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

func (s *Service) Create(ctx context.Context, actorID int64, req CreateRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.DealID == 0 {
		return nil, ErrValidation
	}

	t := &domain.Task{
		DealID:     req.DealID,
		Title:      title,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectTask, strconv.FormatInt(t.ID, 10),
		audit.ActionCreate, t.Title, "", &actorID)
	return t, nil
}

func (s *Service) ListByDeal(ctx context.Context, dealID int64) ([]domain.Task, error) {
	return s.tasks.ListByDeal(ctx, dealID)
}

func (s *Service) Complete(ctx context.Context, id, actorID int64) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}

	if err := s.tasks.Complete(ctx, id, actorID); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectTask, strconv.FormatInt(id, 10),
		audit.ActionComplete, t.Title, "", &actorID)

	return s.tasks.GetByID(ctx, id)
}
