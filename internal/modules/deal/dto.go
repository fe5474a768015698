package deal

import (
	"time"

	"brokercrm/internal/domain"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   int64
	Role domain.Role
}

func (a Actor) IsManager() bool {
	return a.Role == domain.RoleManager
}

type CreateDealRequest struct {
	Title             string     `json:"title" validate:"required"`
	Description       string     `json:"description,omitempty"`
	ClientID          *int64     `json:"client_id,omitempty"`
	ExecutorID        *int64     `json:"executor_id,omitempty"`
	StageName         string     `json:"stage_name,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
}

type CloseDealRequest struct {
	Status domain.DealStatus `json:"status" validate:"required"`
	Reason string            `json:"reason" validate:"required"`
}

type ListDealsRequest struct {
	Status   domain.DealStatus `form:"status"`
	ClientID *int64            `form:"client_id"`
	Unpaid   bool              `form:"unpaid"`
	Limit    int               `form:"limit"`
	Offset   int               `form:"offset"`
}

type AddQuoteRequest struct {
	InsuranceCompany string  `json:"insurance_company,omitempty"`
	InsuranceType    string  `json:"insurance_type,omitempty"`
	SumInsured       float64 `json:"sum_insured" validate:"gte=0"`
	Premium          float64 `json:"premium" validate:"gte=0"`
	SellerID         *int64  `json:"seller_id,omitempty"`
}

type AddPolicyRequest struct {
	Number          string `json:"number" validate:"required"`
	ClientID        *int64 `json:"client_id,omitempty"`
	InsuredClientID *int64 `json:"insured_client_id,omitempty"`
}

// PolicyView is a policy plus its effective client, resolved across the
// direct and legacy client columns.
type PolicyView struct {
	domain.Policy
	ResolvedClientID *int64 `json:"resolved_client_id,omitempty"`
}

type AddPaymentRequest struct {
	PolicyID *int64  `json:"policy_id,omitempty"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

type ConductPaymentRequest struct {
	Amount      float64    `json:"amount" validate:"gte=0"`
	ConductedAt *time.Time `json:"conducted_at,omitempty"`
}
