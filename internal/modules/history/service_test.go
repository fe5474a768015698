package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"brokercrm/internal/database"
	"brokercrm/internal/domain"
	"brokercrm/internal/modules/audit"
	"brokercrm/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newHistoryService(db *gorm.DB) *Service {
	return NewService(
		repository.NewDealRepository(db),
		repository.NewRelatedRepository(db),
		audit.NewService(repository.NewAuditRepository(db)),
	)
}

func seedDealWithChildren(t *testing.T, db *gorm.DB) (deal *domain.Deal, policy *domain.Policy, payment *domain.Payment, record *domain.FinancialRecord, task *domain.Task) {
	t.Helper()
	ctx := context.Background()

	deal = &domain.Deal{Title: "КАСКО Иванов", SellerID: 1}
	require.NoError(t, repository.NewDealRepository(db).Create(ctx, deal))

	policy = &domain.Policy{DealID: deal.ID, Number: "POL-1"}
	require.NoError(t, repository.NewPolicyRepository(db).Create(ctx, policy))

	payments := repository.NewPaymentRepository(db)
	payment = &domain.Payment{DealID: deal.ID, PolicyID: &policy.ID, Amount: 100}
	require.NoError(t, payments.Create(ctx, payment))

	record = &domain.FinancialRecord{PaymentID: payment.ID, Amount: 100}
	require.NoError(t, payments.CreateFinancialRecord(ctx, record))

	task = &domain.Task{DealID: deal.ID, Title: "Позвонить клиенту"}
	require.NoError(t, repository.NewTaskRepository(db).Create(ctx, task))
	return
}

func TestCollectRelatedIDs(t *testing.T) {
	db := newTestDB(t)
	svc := newHistoryService(db)
	deal, policy, payment, record, task := seedDealWithChildren(t, db)

	related, err := svc.CollectRelatedIDs(context.Background(), deal.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{idStr(policy.ID)}, related[domain.ObjectPolicy])
	assert.Equal(t, []string{idStr(payment.ID)}, related[domain.ObjectPayment])
	assert.Equal(t, []string{idStr(record.ID)}, related[domain.ObjectFinancialRecord])
	assert.Equal(t, []string{idStr(task.ID)}, related[domain.ObjectTask])

	// kinds with no rows are absent, not empty
	assert.NotContains(t, related, domain.ObjectNote)
	assert.NotContains(t, related, domain.ObjectDocument)
	assert.NotContains(t, related, domain.ObjectQuote)
}

func TestCollectRelatedIDs_IncludesSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := newHistoryService(db)
	deal, policy, payment, record, _ := seedDealWithChildren(t, db)

	require.NoError(t, repository.NewDealRepository(db).SoftDeleteCascade(context.Background(), deal.ID))

	related, err := svc.CollectRelatedIDs(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{idStr(policy.ID)}, related[domain.ObjectPolicy])
	assert.Equal(t, []string{idStr(payment.ID)}, related[domain.ObjectPayment])
	assert.Equal(t, []string{idStr(record.ID)}, related[domain.ObjectFinancialRecord])
}

func TestDealHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newHistoryService(db)
	auditor := audit.NewService(repository.NewAuditRepository(db))
	ctx := context.Background()

	deal, policy, _, _, _ := seedDealWithChildren(t, db)
	actor := int64(1)

	auditor.Record(ctx, domain.ObjectDeal, idStr(deal.ID), audit.ActionCreate, deal.Title, "", &actor)
	auditor.Record(ctx, domain.ObjectPolicy, idStr(policy.ID), audit.ActionCreate, policy.Number, "", &actor)
	auditor.Record(ctx, domain.ObjectDeal, idStr(deal.ID), audit.ActionClose, deal.Title, "closed as won: signed", &actor)

	// noise for another deal must not leak in
	auditor.Record(ctx, domain.ObjectDeal, "99999", audit.ActionCreate, "other deal", "", &actor)

	entries, err := svc.DealHistory(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, domain.ObjectDeal, entries[0].ObjectType)
	assert.Equal(t, domain.ObjectPolicy, entries[1].ObjectType)
	assert.Equal(t, audit.ActionClose, entries[2].Action)

	// empty descriptions fall back to the object name
	assert.Equal(t, deal.Title, entries[0].Description)
	assert.Equal(t, policy.Number, entries[1].Description)
	assert.Equal(t, "closed as won: signed", entries[2].Description)
}

func TestDealHistory_DeletedDeal(t *testing.T) {
	db := newTestDB(t)
	svc := newHistoryService(db)
	auditor := audit.NewService(repository.NewAuditRepository(db))
	ctx := context.Background()

	deal, _, _, _, _ := seedDealWithChildren(t, db)
	auditor.Record(ctx, domain.ObjectDeal, idStr(deal.ID), audit.ActionCreate, deal.Title, "", nil)
	require.NoError(t, repository.NewDealRepository(db).SoftDeleteCascade(ctx, deal.ID))
	auditor.Record(ctx, domain.ObjectDeal, idStr(deal.ID), audit.ActionDelete, deal.Title, "", nil)

	entries, err := svc.DealHistory(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionDelete, entries[1].Action)
}

func TestDealHistory_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newHistoryService(db)

	_, err := svc.DealHistory(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestMapEntry_DescriptionFallback(t *testing.T) {
	now := time.Now().UTC()

	withDescription := mapEntry(domain.AuditLog{
		ObjectType: domain.ObjectDeal, ObjectID: "1", Action: audit.ActionClose,
		ObjectName: "КАСКО Иванов", Description: "closed as won: signed", CreatedAt: now,
	})
	assert.Equal(t, "closed as won: signed", withDescription.Description)

	withoutDescription := mapEntry(domain.AuditLog{
		ObjectType: domain.ObjectDeal, ObjectID: "1", Action: audit.ActionCreate,
		ObjectName: "КАСКО Иванов", CreatedAt: now,
	})
	assert.Equal(t, "КАСКО Иванов", withoutDescription.Description)
}

func idStr(id int64) string {
	return strconv.FormatInt(id, 10)
}
