package history

import (
	"context"
	"errors"
	"strconv"
	"time"

	"brokercrm/internal/domain"
	"brokercrm/internal/repository"
)

var ErrDealNotFound = errors.New("deal not found")

type DealReader interface {
	GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Deal, error)
}

// RelatedReader walks a deal's children. Implementations must include
// soft-deleted rows; deleted items stay visible in history.
type RelatedReader interface {
	TaskIDs(ctx context.Context, dealID int64) ([]int64, error)
	NoteIDs(ctx context.Context, dealID int64) ([]int64, error)
	DocumentIDs(ctx context.Context, dealID int64) ([]int64, error)
	QuoteIDs(ctx context.Context, dealID int64) ([]int64, error)
	PolicyIDs(ctx context.Context, dealID int64) ([]int64, error)
	PaymentIDs(ctx context.Context, dealID int64, policyIDs []int64) ([]int64, error)
	FinancialRecordIDs(ctx context.Context, paymentIDs []int64) ([]int64, error)
}

type AuditReader interface {
	Query(ctx context.Context, refs []repository.ObjectRef) ([]domain.AuditLog, error)
}

type Service struct {
	deals   DealReader
	related RelatedReader
	audit   AuditReader
}

func NewService(deals DealReader, related RelatedReader, audit AuditReader) *Service {
	return &Service{deals: deals, related: related, audit: audit}
}

// Entry is the consumer-visible projection of one audit row.
type Entry struct {
	ObjectType  string    `json:"object_type"`
	ObjectID    string    `json:"object_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	ActorID     *int64    `json:"actor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CollectRelatedIDs gathers ids of everything attached to the deal,
// directly or through the policy -> payment -> financial record chain.
// Soft-deleted relations are included. Kinds with no rows are absent from
// the map instead of holding an empty set.
func (s *Service) CollectRelatedIDs(ctx context.Context, dealID int64) (map[string][]string, error) {
	related := make(map[string][]string)

	collect := func(kind string, ids []int64) {
		if len(ids) == 0 {
			return
		}
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, strconv.FormatInt(id, 10))
		}
		related[kind] = out
	}

	taskIDs, err := s.related.TaskIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectTask, taskIDs)

	noteIDs, err := s.related.NoteIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectNote, noteIDs)

	docIDs, err := s.related.DocumentIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectDocument, docIDs)

	quoteIDs, err := s.related.QuoteIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectQuote, quoteIDs)

	policyIDs, err := s.related.PolicyIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectPolicy, policyIDs)

	paymentIDs, err := s.related.PaymentIDs(ctx, dealID, policyIDs)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectPayment, paymentIDs)

	recordIDs, err := s.related.FinancialRecordIDs(ctx, paymentIDs)
	if err != nil {
		return nil, err
	}
	collect(domain.ObjectFinancialRecord, recordIDs)

	return related, nil
}

// DealHistory returns the audit feed of a deal and everything related to
// it, oldest entry first. Works for soft-deleted deals too.
func (s *Service) DealHistory(ctx context.Context, dealID int64) ([]Entry, error) {
	deal, err := s.deals.GetByIDWithDeleted(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}

	related, err := s.CollectRelatedIDs(ctx, dealID)
	if err != nil {
		return nil, err
	}

	refs := []repository.ObjectRef{
		{Type: domain.ObjectDeal, ID: strconv.FormatInt(dealID, 10)},
	}
	for kind, ids := range related {
		for _, id := range ids {
			refs = append(refs, repository.ObjectRef{Type: kind, ID: id})
		}
	}

	logs, err := s.audit.Query(ctx, refs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(logs))
	for _, entry := range logs {
		entries = append(entries, mapEntry(entry))
	}
	return entries, nil
}

// mapEntry projects an audit row. When no explicit description was
// recorded the object name stands in for it; consumers always get a
// non-empty description for named objects.
func mapEntry(e domain.AuditLog) Entry {
	description := e.Description
	if description == "" {
		description = e.ObjectName
	}
	return Entry{
		ObjectType:  e.ObjectType,
		ObjectID:    e.ObjectID,
		Action:      e.Action,
		Description: description,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
	}
}
