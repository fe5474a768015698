package note

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"brokercrm/internal/domain"
	"brokercrm/internal/modules/audit"
)

var ErrValidation = errors.New("validation error")

type Repository interface {
	Create(ctx context.Context, n *domain.Note) error
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Note, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64)
}

type Service struct {
	notes   Repository
	auditor AuditRecorder
}

func NewService(notes Repository, auditor AuditRecorder) *Service {
	return &Service{notes: notes, auditor: auditor}
}

type CreateRequest struct {
	DealID int64  `json:"deal_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

func (s *Service) Create(ctx context.Context, actorID int64, req CreateRequest) (*domain.Note, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" || req.DealID == 0 {
		return nil, ErrValidation
	}

	n := &domain.Note{
		DealID:   req.DealID,
		AuthorID: actorID,
		Text:     text,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}

	name := text
	if len(name) > 60 {
		name = name[:60]
	}
	s.auditor.Record(ctx, domain.ObjectNote, strconv.FormatInt(n.ID, 10),
		audit.ActionCreate, name, "", &actorID)
	return n, nil
}

func (s *Service) ListByDeal(ctx context.Context, dealID int64) ([]domain.Note, error) {
	return s.notes.ListByDeal(ctx, dealID)
}
