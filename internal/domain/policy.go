package domain

import "time"

type PolicyStatus string

const (
	PolicyDraft     PolicyStatus = "draft"
	PolicyActive    PolicyStatus = "active"
	PolicyCancelled PolicyStatus = "cancelled"
	PolicyExpired   PolicyStatus = "expired"
)

type Policy struct {
	ID     int64  `json:"id" gorm:"column:id;primaryKey"`
	DealID int64  `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	Number string `json:"number" gorm:"column:number;uniqueIndex:idx_policies_number" validate:"required"`

	// ClientID is the source of truth; InsuredClientID is a legacy column
	// consulted only when ClientID is null. Both set with different values
	// is a validation error at write time.
	ClientID        *int64 `json:"client_id,omitempty" gorm:"column:client_id"`
	InsuredClientID *int64 `json:"insured_client_id,omitempty" gorm:"column:insured_client_id"`

	Status    PolicyStatus `json:"status" gorm:"column:status;default:draft"`
	CreatedAt time.Time    `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Policy) TableName() string { return "policies" }

// ResolvedClientID returns the effective client of the policy.
func (p *Policy) ResolvedClientID() *int64 {
	if p.ClientID != nil {
		return p.ClientID
	}
	return p.InsuredClientID
}
