package deal

import (
	"context"

	"brokercrm/internal/domain"
	"brokercrm/internal/repository"
)

type DealRepository interface {
	Create(ctx context.Context, d *domain.Deal) error
	GetByID(ctx context.Context, id int64) (*domain.Deal, error)
	GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Deal, error)
	List(ctx context.Context, f repository.DealFilter) ([]domain.Deal, int64, error)
	CloseDeal(ctx context.Context, id int64, status domain.DealStatus, reason string) (bool, error)
	ReopenDeal(ctx context.Context, id int64) (bool, error)
	SoftDeleteCascade(ctx context.Context, dealID int64) error
}

type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Quote, error)
}

type PolicyRepository interface {
	Create(ctx context.Context, p *domain.Policy) error
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Policy, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Payment, error)
	CreateFinancialRecord(ctx context.Context, fr *domain.FinancialRecord) error
}

// AuditRecorder is the write-through audit hook; append failures never
// fail the mutation.
type AuditRecorder interface {
	Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64)
}
