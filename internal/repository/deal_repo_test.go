package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"brokercrm/internal/database"
	"brokercrm/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-cache memory DB so every pooled connection sees the
	// same data within one test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedDealTree(t *testing.T, db *gorm.DB) (dealID, policyID, paymentByDeal, paymentByPolicy, recordID, taskID, noteID, docID int64) {
	t.Helper()
	ctx := context.Background()

	d := &domain.Deal{Title: "КАСКО Иванов", SellerID: 1}
	require.NoError(t, NewDealRepository(db).Create(ctx, d))

	p := &domain.Policy{DealID: d.ID, Number: "POL-1"}
	require.NoError(t, NewPolicyRepository(db).Create(ctx, p))

	payments := NewPaymentRepository(db)
	byDeal := &domain.Payment{DealID: d.ID, Amount: 100}
	require.NoError(t, payments.Create(ctx, byDeal))
	byPolicy := &domain.Payment{DealID: d.ID, PolicyID: &p.ID, Amount: 200}
	require.NoError(t, payments.Create(ctx, byPolicy))

	fr := &domain.FinancialRecord{PaymentID: byPolicy.ID, Amount: 200}
	require.NoError(t, payments.CreateFinancialRecord(ctx, fr))

	task := &domain.Task{DealID: d.ID, Title: "Позвонить клиенту"}
	require.NoError(t, NewTaskRepository(db).Create(ctx, task))

	note := &domain.Note{DealID: d.ID, AuthorID: 1, Text: "note"}
	require.NoError(t, NewNoteRepository(db).Create(ctx, note))

	doc := &domain.Document{DealID: d.ID, Name: "scan.pdf"}
	require.NoError(t, NewDocumentRepository(db).Create(ctx, doc))

	return d.ID, p.ID, byDeal.ID, byPolicy.ID, fr.ID, task.ID, note.ID, doc.ID
}

func deletedAt(t *testing.T, db *gorm.DB, model any, id int64) *time.Time {
	t.Helper()
	var ts sql.NullTime
	require.NoError(t, db.Model(model).Where("id = ?", id).Pluck("deleted_at", &ts).Error)
	if !ts.Valid {
		return nil
	}
	return &ts.Time
}

func TestSoftDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	dealID, policyID, payDeal, payPolicy, recordID, taskID, noteID, docID := seedDealTree(t, db)

	require.NoError(t, repo.SoftDeleteCascade(ctx, dealID))

	// financial chain is gone
	assert.NotNil(t, deletedAt(t, db, &domain.Deal{}, dealID))
	assert.NotNil(t, deletedAt(t, db, &domain.Policy{}, policyID))
	assert.NotNil(t, deletedAt(t, db, &domain.Payment{}, payDeal))
	assert.NotNil(t, deletedAt(t, db, &domain.Payment{}, payPolicy))
	assert.NotNil(t, deletedAt(t, db, &domain.FinancialRecord{}, recordID))

	// tasks, notes and documents survive the cascade
	assert.Nil(t, deletedAt(t, db, &domain.Task{}, taskID))
	assert.Nil(t, deletedAt(t, db, &domain.Note{}, noteID))
	assert.Nil(t, deletedAt(t, db, &domain.Document{}, docID))

	// default read excludes the deleted deal, with-deleted finds it
	d, err := repo.GetByID(ctx, dealID)
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = repo.GetByIDWithDeleted(ctx, dealID)
	assert.NoError(t, err)
	require.NotNil(t, d)
	assert.NotNil(t, d.DeletedAt)
}

func TestSoftDeleteCascade_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	dealID, policyID, _, _, _, _, _, _ := seedDealTree(t, db)

	require.NoError(t, repo.SoftDeleteCascade(ctx, dealID))
	first := deletedAt(t, db, &domain.Policy{}, policyID)
	require.NotNil(t, first)

	// a retried cascade must not move existing timestamps
	require.NoError(t, repo.SoftDeleteCascade(ctx, dealID))
	second := deletedAt(t, db, &domain.Policy{}, policyID)
	require.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}

func TestSoftDeleteCascade_NoChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	d := &domain.Deal{Title: "empty deal", SellerID: 1}
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, repo.SoftDeleteCascade(ctx, d.ID))
	assert.NotNil(t, deletedAt(t, db, &domain.Deal{}, d.ID))
}

func TestListUnpaidFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)
	payments := NewPaymentRepository(db)

	unpaidDeal := &domain.Deal{Title: "unpaid deal", SellerID: 1}
	require.NoError(t, repo.Create(ctx, unpaidDeal))
	paidDeal := &domain.Deal{Title: "paid deal", SellerID: 1}
	require.NoError(t, repo.Create(ctx, paidDeal))

	pay1 := &domain.Payment{DealID: unpaidDeal.ID, Amount: 100}
	require.NoError(t, payments.Create(ctx, pay1))

	pay2 := &domain.Payment{DealID: paidDeal.ID, Amount: 100}
	require.NoError(t, payments.Create(ctx, pay2))
	conducted := time.Now().UTC()
	require.NoError(t, payments.CreateFinancialRecord(ctx, &domain.FinancialRecord{
		PaymentID:   pay2.ID,
		Amount:      100,
		ConductedAt: &conducted,
	}))

	deals, total, err := repo.List(ctx, DealFilter{Unpaid: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, deals, 1)
	assert.Equal(t, unpaidDeal.ID, deals[0].ID)
}

func TestListUnpaidFilter_UndatedRecordStillUnpaid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)
	payments := NewPaymentRepository(db)

	d := &domain.Deal{Title: "deal", SellerID: 1}
	require.NoError(t, repo.Create(ctx, d))

	pay := &domain.Payment{DealID: d.ID, Amount: 100}
	require.NoError(t, payments.Create(ctx, pay))
	// record exists but has no conducted date
	require.NoError(t, payments.CreateFinancialRecord(ctx, &domain.FinancialRecord{
		PaymentID: pay.ID,
		Amount:    100,
	}))

	deals, _, err := repo.List(ctx, DealFilter{Unpaid: true})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, d.ID, deals[0].ID)
}

func TestCandidatesFiltering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	open := &domain.Deal{Title: "open", SellerID: 1, Status: domain.DealOpen}
	require.NoError(t, repo.Create(ctx, open))
	won := &domain.Deal{Title: "won", SellerID: 1, Status: domain.DealWon, ClosingReason: "signed"}
	require.NoError(t, repo.Create(ctx, won))
	deleted := &domain.Deal{Title: "deleted", SellerID: 1, Status: domain.DealOpen}
	require.NoError(t, repo.Create(ctx, deleted))
	require.NoError(t, repo.SoftDeleteCascade(ctx, deleted.ID))

	ids := func(deals []domain.Deal) []int64 {
		out := make([]int64, 0, len(deals))
		for _, d := range deals {
			out = append(out, d.ID)
		}
		return out
	}

	pool, err := repo.Candidates(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{open.ID}, ids(pool))

	pool, err = repo.Candidates(ctx, true, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{open.ID, won.ID}, ids(pool))

	pool, err = repo.Candidates(ctx, true, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{open.ID, won.ID, deleted.ID}, ids(pool))
}

func TestCloseDealGuard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	d := &domain.Deal{Title: "guarded", SellerID: 1, Status: domain.DealOpen}
	require.NoError(t, repo.Create(ctx, d))

	ok, err := repo.CloseDeal(ctx, d.ID, domain.DealWon, "signed")
	require.NoError(t, err)
	assert.True(t, ok)

	// a second closer loses: the guard lives in the UPDATE itself
	ok, err = repo.CloseDeal(ctx, d.ID, domain.DealLost, "changed mind")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.DealWon, got.Status)
	assert.Equal(t, "signed", got.ClosingReason)
}

func TestReopenDealGuard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	d := &domain.Deal{Title: "guarded", SellerID: 1, Status: domain.DealOpen}
	require.NoError(t, repo.Create(ctx, d))

	// reopening an open deal is a no-op
	ok, err := repo.ReopenDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.CloseDeal(ctx, d.ID, domain.DealLost, "no budget")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ReopenDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.DealOpen, got.Status)
	assert.Empty(t, got.ClosingReason)
}

func TestCloseDealGuard_DeletedDeal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	d := &domain.Deal{Title: "gone", SellerID: 1, Status: domain.DealOpen}
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.SoftDeleteCascade(ctx, d.ID))

	ok, err := repo.CloseDeal(ctx, d.ID, domain.DealWon, "signed")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewDealRepository(db)

	d := &domain.Deal{Title: "to restore", SellerID: 1}
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.SoftDeleteCascade(ctx, d.ID))
	require.NoError(t, repo.Restore(ctx, d.ID))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.DeletedAt)
}
