package deal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"brokercrm/internal/domain"
	"brokercrm/internal/repository"

	"brokercrm/internal/modules/audit"
)

type Service struct {
	deals    DealRepository
	quotes   QuoteRepository
	policies PolicyRepository
	payments PaymentRepository
	auditor  AuditRecorder
}

func NewService(
	deals DealRepository,
	quotes QuoteRepository,
	policies PolicyRepository,
	payments PaymentRepository,
	auditor AuditRecorder,
) *Service {
	return &Service{
		deals:    deals,
		quotes:   quotes,
		policies: policies,
		payments: payments,
		auditor:  auditor,
	}
}

func (s *Service) Create(ctx context.Context, actor Actor, req CreateDealRequest) (*domain.Deal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrValidation
	}

	d := &domain.Deal{
		Title:             title,
		Description:       req.Description,
		ClientID:          req.ClientID,
		SellerID:          actor.ID,
		ExecutorID:        req.ExecutorID,
		Status:            domain.DealOpen,
		StageName:         req.StageName,
		ExpectedCloseDate: req.ExpectedCloseDate,
	}
	if err := s.deals.Create(ctx, d); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectDeal, idStr(d.ID), audit.ActionCreate, d.Title, "", &actor.ID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Deal, error) {
	d, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, req ListDealsRequest) ([]domain.Deal, int64, error) {
	return s.deals.List(ctx, repository.DealFilter{
		Status:   req.Status,
		ClientID: req.ClientID,
		Unpaid:   req.Unpaid,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

// Close moves a deal into won or lost. Only the deal's seller or a
// manager may close; the closing reason is mandatory and only the two
// closing fields are persisted.
func (s *Service) Close(ctx context.Context, dealID int64, actor Actor, req CloseDealRequest) (*domain.Deal, error) {
	d, err := s.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && d.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	if d.IsClosed() {
		return nil, ErrAlreadyClosed
	}
	if !domain.ClosingStatuses[req.Status] {
		return nil, ErrValidation
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrValidation
	}

	// The repository re-checks the status inside the UPDATE; a racing
	// closer that lost gets the same answer as a late one.
	ok, err := s.deals.CloseDeal(ctx, dealID, req.Status, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyClosed
	}

	s.auditor.Record(ctx, domain.ObjectDeal, idStr(dealID), audit.ActionClose, d.Title,
		fmt.Sprintf("closed as %s: %s", req.Status, reason), &actor.ID)

	d.Status = req.Status
	d.ClosingReason = reason
	return d, nil
}

// Reopen returns a closed deal to open and clears the closing reason.
func (s *Service) Reopen(ctx context.Context, dealID int64, actor Actor) (*domain.Deal, error) {
	d, err := s.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && d.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	if !d.IsClosed() {
		return nil, ErrNotClosed
	}

	ok, err := s.deals.ReopenDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotClosed
	}

	s.auditor.Record(ctx, domain.ObjectDeal, idStr(dealID), audit.ActionReopen, d.Title, "", &actor.ID)

	d.Status = domain.DealOpen
	d.ClosingReason = ""
	return d, nil
}

// Delete soft-deletes the deal and cascades to its policies, payments
// and financial records. Tasks, notes and documents stay alive.
func (s *Service) Delete(ctx context.Context, dealID int64, actor Actor) error {
	d, err := s.Get(ctx, dealID)
	if err != nil {
		return err
	}
	if !actor.IsManager() && d.SellerID != actor.ID {
		return ErrForbidden
	}

	if err := s.deals.SoftDeleteCascade(ctx, dealID); err != nil {
		return err
	}

	s.auditor.Record(ctx, domain.ObjectDeal, idStr(dealID), audit.ActionDelete, d.Title, "", &actor.ID)
	return nil
}

func (s *Service) AddQuote(ctx context.Context, dealID int64, actor Actor, req AddQuoteRequest) (*domain.Quote, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}

	q := &domain.Quote{
		DealID:           dealID,
		InsuranceCompany: req.InsuranceCompany,
		InsuranceType:    req.InsuranceType,
		SumInsured:       req.SumInsured,
		Premium:          req.Premium,
		SellerID:         req.SellerID,
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectQuote, idStr(q.ID), audit.ActionCreate,
		fmt.Sprintf("%s quote", q.InsuranceType), "", &actor.ID)
	return q, nil
}

func (s *Service) ListQuotes(ctx context.Context, dealID int64) ([]domain.Quote, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}
	return s.quotes.ListByDeal(ctx, dealID)
}

// AddPolicy validates the policy number and the client columns. The
// direct client field and the legacy insured-client field must not point
// at different clients.
func (s *Service) AddPolicy(ctx context.Context, dealID int64, actor Actor, req AddPolicyRequest) (*domain.Policy, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, ErrValidation
	}
	if req.ClientID != nil && req.InsuredClientID != nil && *req.ClientID != *req.InsuredClientID {
		return nil, ErrClientConflict
	}

	p := &domain.Policy{
		DealID:          dealID,
		Number:          number,
		ClientID:        req.ClientID,
		InsuredClientID: req.InsuredClientID,
		Status:          domain.PolicyDraft,
	}
	if err := s.policies.Create(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPolicyNumberTaken
		}
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectPolicy, idStr(p.ID), audit.ActionCreate, p.Number, "", &actor.ID)
	return p, nil
}

// ListPolicies returns the deal's policies decorated with the effective
// client, so consumers never have to know about the legacy insured-client
// column.
func (s *Service) ListPolicies(ctx context.Context, dealID int64) ([]PolicyView, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}

	policies, err := s.policies.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	views := make([]PolicyView, 0, len(policies))
	for _, p := range policies {
		views = append(views, PolicyView{
			Policy:           p,
			ResolvedClientID: p.ResolvedClientID(),
		})
	}
	return views, nil
}

func (s *Service) AddPayment(ctx context.Context, dealID int64, actor Actor, req AddPaymentRequest) (*domain.Payment, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}

	p := &domain.Payment{
		DealID:   dealID,
		PolicyID: req.PolicyID,
		Amount:   req.Amount,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectPayment, idStr(p.ID), audit.ActionCreate,
		fmt.Sprintf("payment of %.2f", p.Amount), "", &actor.ID)
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, dealID int64) ([]domain.Payment, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}
	return s.payments.ListByDeal(ctx, dealID)
}

// ConductPayment records money moved against a payment. A payment stays
// "unpaid" until it has a financial record with a conducted date.
func (s *Service) ConductPayment(ctx context.Context, paymentID int64, actor Actor, req ConductPaymentRequest) (*domain.FinancialRecord, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	fr := &domain.FinancialRecord{
		PaymentID:   paymentID,
		Amount:      req.Amount,
		ConductedAt: req.ConductedAt,
	}
	if err := s.payments.CreateFinancialRecord(ctx, fr); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectFinancialRecord, idStr(fr.ID), audit.ActionCreate,
		fmt.Sprintf("financial record of %.2f", fr.Amount), "", &actor.ID)
	return fr, nil
}

func idStr(id int64) string {
	return strconv.FormatInt(id, 10)
}
