package domain

import "time"

type Payment struct {
	ID         int64      `json:"id" gorm:"column:id;primaryKey"`
	DealID     int64      `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	PolicyID   *int64     `json:"policy_id,omitempty" gorm:"column:policy_id;index"`
	Amount     float64    `json:"amount" gorm:"column:amount" validate:"gte=0"`
	ActualDate *time.Time `json:"actual_date,omitempty" gorm:"column:actual_date"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Payment) TableName() string { return "payments" }

// FinancialRecord marks money actually conducted against a payment.
// A payment with no dated record counts as unpaid.
type FinancialRecord struct {
	ID          int64      `json:"id" gorm:"column:id;primaryKey"`
	PaymentID   int64      `json:"payment_id" gorm:"column:payment_id;index" validate:"required"`
	Amount      float64    `json:"amount" gorm:"column:amount"`
	ConductedAt *time.Time `json:"conducted_at,omitempty" gorm:"column:conducted_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (FinancialRecord) TableName() string { return "financial_records" }
