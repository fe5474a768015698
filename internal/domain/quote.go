package domain

import "time"

type Quote struct {
	ID               int64      `json:"id" gorm:"column:id;primaryKey"`
	DealID           int64      `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	InsuranceCompany string     `json:"insurance_company,omitempty" gorm:"column:insurance_company"`
	InsuranceType    string     `json:"insurance_type,omitempty" gorm:"column:insurance_type"`
	SumInsured       float64    `json:"sum_insured" gorm:"column:sum_insured"`
	Premium          float64    `json:"premium" gorm:"column:premium"`
	SellerID         *int64     `json:"seller_id,omitempty" gorm:"column:seller_id"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Quote) TableName() string { return "quotes" }
