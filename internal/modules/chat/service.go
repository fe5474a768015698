package chat

import (
	"context"
	"errors"
	"strings"

	"brokercrm/internal/domain"
)

var ErrValidation = errors.New("validation error")

type Repository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListByDeal(ctx context.Context, dealID int64, limit int) ([]domain.Message, error)
}

type Service struct {
	messages Repository
	hub      *Hub
}

func NewService(messages Repository, hub *Hub) *Service {
	return &Service{messages: messages, hub: hub}
}

// Send persists the message, then fans it out to the deal's room.
func (s *Service) Send(ctx context.Context, dealID, authorID int64, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidation
	}

	m := &domain.Message{
		DealID:   dealID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.hub.Broadcast(dealID, m)
	return m, nil
}

func (s *Service) History(ctx context.Context, dealID int64, limit int) ([]domain.Message, error) {
	return s.messages.ListByDeal(ctx, dealID, limit)
}
