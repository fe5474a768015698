package deal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brokercrm/internal/domain"
	"brokercrm/internal/repository"
)

type mockDealRepo struct{ mock.Mock }

func (m *mockDealRepo) Create(ctx context.Context, d *domain.Deal) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDealRepo) GetByID(ctx context.Context, id int64) (*domain.Deal, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*domain.Deal)
	return d, args.Error(1)
}

func (m *mockDealRepo) GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Deal, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*domain.Deal)
	return d, args.Error(1)
}

func (m *mockDealRepo) List(ctx context.Context, f repository.DealFilter) ([]domain.Deal, int64, error) {
	args := m.Called(ctx, f)
	d, _ := args.Get(0).([]domain.Deal)
	return d, args.Get(1).(int64), args.Error(2)
}

func (m *mockDealRepo) CloseDeal(ctx context.Context, id int64, status domain.DealStatus, reason string) (bool, error) {
	args := m.Called(ctx, id, status, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockDealRepo) ReopenDeal(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDealRepo) SoftDeleteCascade(ctx context.Context, dealID int64) error {
	return m.Called(ctx, dealID).Error(0)
}

type mockPolicyRepo struct{ mock.Mock }

func (m *mockPolicyRepo) Create(ctx context.Context, p *domain.Policy) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPolicyRepo) ListByDeal(ctx context.Context, dealID int64) ([]domain.Policy, error) {
	args := m.Called(ctx, dealID)
	p, _ := args.Get(0).([]domain.Policy)
	return p, args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepo) ListByDeal(ctx context.Context, dealID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, dealID)
	p, _ := args.Get(0).([]domain.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepo) CreateFinancialRecord(ctx context.Context, fr *domain.FinancialRecord) error {
	return m.Called(ctx, fr).Error(0)
}

type noopAuditor struct{}

func (noopAuditor) Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64) {
}

func ptr[T any](v T) *T { return &v }

var (
	seller  = Actor{ID: 2, Role: domain.RoleSeller}
	manager = Actor{ID: 9, Role: domain.RoleManager}
	someone = Actor{ID: 77, Role: domain.RoleSeller}
)

func openDeal() *domain.Deal {
	return &domain.Deal{ID: 1, Title: "КАСКО Иванов", SellerID: seller.ID, Status: domain.DealOpen}
}

func newTestService(deals *mockDealRepo, policies *mockPolicyRepo) *Service {
	if policies == nil {
		policies = new(mockPolicyRepo)
	}
	return NewService(deals, nil, policies, new(mockPaymentRepo), noopAuditor{})
}

func TestClose(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	deals.On("CloseDeal", mock.Anything, int64(1), domain.DealWon, "client signed").Return(true, nil)
	svc := newTestService(deals, nil)

	d, err := svc.Close(context.Background(), 1, seller, CloseDealRequest{
		Status: domain.DealWon,
		Reason: "  client signed  ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DealWon, d.Status)
	assert.Equal(t, "client signed", d.ClosingReason)
	deals.AssertExpectations(t)
}

func TestClose_RequiresReason(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	svc := newTestService(deals, nil)

	for _, reason := range []string{"", "   "} {
		_, err := svc.Close(context.Background(), 1, seller, CloseDealRequest{
			Status: domain.DealWon,
			Reason: reason,
		})
		assert.ErrorIs(t, err, ErrValidation)
	}
	deals.AssertNotCalled(t, "CloseDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClose_RejectsNonClosingStatus(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	svc := newTestService(deals, nil)

	_, err := svc.Close(context.Background(), 1, seller, CloseDealRequest{
		Status: domain.DealOnHold,
		Reason: "pause",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClose_AlreadyClosed(t *testing.T) {
	closed := openDeal()
	closed.Status = domain.DealWon
	closed.ClosingReason = "signed"

	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(closed, nil)
	svc := newTestService(deals, nil)

	_, err := svc.Close(context.Background(), 1, seller, CloseDealRequest{
		Status: domain.DealLost,
		Reason: "changed mind",
	})
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestClose_Access(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	deals.On("CloseDeal", mock.Anything, int64(1), domain.DealLost, "no budget").Return(true, nil)
	svc := newTestService(deals, nil)

	_, err := svc.Close(context.Background(), 1, someone, CloseDealRequest{
		Status: domain.DealLost,
		Reason: "no budget",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// a manager can close any deal
	_, err = svc.Close(context.Background(), 1, manager, CloseDealRequest{
		Status: domain.DealLost,
		Reason: "no budget",
	})
	assert.NoError(t, err)
}

func TestClose_MissingDealIsNotFound(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)
	svc := newTestService(deals, nil)

	_, err := svc.Close(context.Background(), 5, seller, CloseDealRequest{
		Status: domain.DealWon,
		Reason: "signed",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopen(t *testing.T) {
	closed := openDeal()
	closed.Status = domain.DealLost
	closed.ClosingReason = "no budget"

	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(closed, nil)
	deals.On("ReopenDeal", mock.Anything, int64(1)).Return(true, nil)
	svc := newTestService(deals, nil)

	d, err := svc.Reopen(context.Background(), 1, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.DealOpen, d.Status)
	assert.Empty(t, d.ClosingReason)
	deals.AssertExpectations(t)
}

func TestReopen_OpenDeal(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	svc := newTestService(deals, nil)

	_, err := svc.Reopen(context.Background(), 1, seller)
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestClose_RacingCloserLoses(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	// someone else closed the deal between the read and the update
	deals.On("CloseDeal", mock.Anything, int64(1), domain.DealWon, "signed").Return(false, nil)
	svc := newTestService(deals, nil)

	_, err := svc.Close(context.Background(), 1, seller, CloseDealRequest{
		Status: domain.DealWon,
		Reason: "signed",
	})
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestReopen_RacingReopenerLoses(t *testing.T) {
	closed := openDeal()
	closed.Status = domain.DealWon
	closed.ClosingReason = "signed"

	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(closed, nil)
	deals.On("ReopenDeal", mock.Anything, int64(1)).Return(false, nil)
	svc := newTestService(deals, nil)

	_, err := svc.Reopen(context.Background(), 1, seller)
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestDelete_Cascades(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	deals.On("SoftDeleteCascade", mock.Anything, int64(1)).Return(nil)
	svc := newTestService(deals, nil)

	require.NoError(t, svc.Delete(context.Background(), 1, seller))
	deals.AssertExpectations(t)
}

func TestDelete_Forbidden(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	svc := newTestService(deals, nil)

	err := svc.Delete(context.Background(), 1, someone)
	assert.ErrorIs(t, err, ErrForbidden)
	deals.AssertNotCalled(t, "SoftDeleteCascade", mock.Anything, mock.Anything)
}

func TestAddPolicy_Validation(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)
	svc := newTestService(deals, nil)

	_, err := svc.AddPolicy(context.Background(), 1, seller, AddPolicyRequest{Number: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddPolicy(context.Background(), 1, seller, AddPolicyRequest{
		Number:          "POL-1",
		ClientID:        ptr(int64(10)),
		InsuredClientID: ptr(int64(11)),
	})
	assert.ErrorIs(t, err, ErrClientConflict)
}

func TestAddPolicy_SameClientBothColumns(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)

	policies := new(mockPolicyRepo)
	policies.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Policy) bool {
		return p.Number == "POL-1" && p.Status == domain.PolicyDraft
	})).Return(nil)
	svc := newTestService(deals, policies)

	p, err := svc.AddPolicy(context.Background(), 1, seller, AddPolicyRequest{
		Number:          " POL-1 ",
		ClientID:        ptr(int64(10)),
		InsuredClientID: ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, "POL-1", p.Number)
	policies.AssertExpectations(t)
}

func TestListPolicies_ResolvesClient(t *testing.T) {
	deals := new(mockDealRepo)
	deals.On("GetByID", mock.Anything, int64(1)).Return(openDeal(), nil)

	policies := new(mockPolicyRepo)
	policies.On("ListByDeal", mock.Anything, int64(1)).Return([]domain.Policy{
		{ID: 1, DealID: 1, Number: "POL-1", ClientID: ptr(int64(10))},
		{ID: 2, DealID: 1, Number: "POL-2", InsuredClientID: ptr(int64(11))},
		{ID: 3, DealID: 1, Number: "POL-3"},
	}, nil)
	svc := newTestService(deals, policies)

	views, err := svc.ListPolicies(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 3)

	// direct client wins, legacy column fills the gap, nothing else
	assert.Equal(t, int64(10), *views[0].ResolvedClientID)
	assert.Equal(t, int64(11), *views[1].ResolvedClientID)
	assert.Nil(t, views[2].ResolvedClientID)
}

func TestConductPayment_MissingPayment(t *testing.T) {
	payments := new(mockPaymentRepo)
	payments.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)
	svc := NewService(new(mockDealRepo), nil, new(mockPolicyRepo), payments, noopAuditor{})

	_, err := svc.ConductPayment(context.Background(), 5, seller, ConductPaymentRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrNotFound)
	payments.AssertNotCalled(t, "CreateFinancialRecord", mock.Anything, mock.Anything)
}

func TestConductPayment(t *testing.T) {
	payments := new(mockPaymentRepo)
	payments.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Payment{ID: 5, DealID: 1, Amount: 100}, nil)
	payments.On("CreateFinancialRecord", mock.Anything, mock.MatchedBy(func(fr *domain.FinancialRecord) bool {
		return fr.PaymentID == 5 && fr.Amount == 100
	})).Return(nil)
	svc := NewService(new(mockDealRepo), nil, new(mockPolicyRepo), payments, noopAuditor{})

	fr, err := svc.ConductPayment(context.Background(), 5, seller, ConductPaymentRequest{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(5), fr.PaymentID)
	payments.AssertExpectations(t)
}
