package client

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
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("client not found")
)

type Repository interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context, limit, offset int) ([]domain.Client, int64, error)
	Update(ctx context.Context, c *domain.Client) error
	SoftDelete(ctx context.Context, id int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64)
}

type Service struct {
	clients Repository
	auditor AuditRecorder
}

func NewService(clients Repository, auditor AuditRecorder) *Service {
	return &Service{clients: clients, auditor: auditor}
}

type CreateRequest struct {
	Name      string     `json:"name" validate:"required"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (s *Service) Create(ctx context.Context, actorID int64, req CreateRequest) (*domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrValidation
	}

	c := &domain.Client{
		Name:      name,
		Phone:     req.Phone,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		CreatedBy: actorID,
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectClient, strconv.FormatInt(c.ID, 10),
		audit.ActionCreate, c.Name, "", &actorID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Client, int64, error) {
	return s.clients.List(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clients.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, domain.ObjectClient, strconv.FormatInt(id, 10),
		audit.ActionDelete, c.Name, "", &actorID)
	return nil
}
