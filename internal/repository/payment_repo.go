package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"brokercrm/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	tx := alive(r.db.WithContext(ctx)).First(&p, id)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PaymentRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := alive(r.db.WithContext(ctx)).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) CreateFinancialRecord(ctx context.Context, fr *domain.FinancialRecord) error {
	return r.db.WithContext(ctx).Create(fr).Error
}

func (r *PaymentRepository) ListFinancialRecords(ctx context.Context, paymentID int64) ([]domain.FinancialRecord, error) {
	var records []domain.FinancialRecord
	err := alive(r.db.WithContext(ctx)).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}
