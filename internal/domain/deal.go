package domain

import "time"

type DealStatus string

const (
	DealOpen   DealStatus = "open"
	DealOnHold DealStatus = "on_hold"
	DealWon    DealStatus = "won"
	DealLost   DealStatus = "lost"
)

// ClosingStatuses are the only statuses a deal can be closed into.
var ClosingStatuses = map[DealStatus]bool{
	DealWon:  true,
	DealLost: true,
}

type Deal struct {
	ID          int64  `json:"id" gorm:"column:id;primaryKey"`
	Title       string `json:"title" gorm:"column:title" validate:"required"`
	Description string `json:"description,omitempty" gorm:"column:description;type:text"`

	ClientID   *int64 `json:"client_id,omitempty" gorm:"column:client_id"`
	SellerID   int64  `json:"seller_id" gorm:"column:seller_id"`
	ExecutorID *int64 `json:"executor_id,omitempty" gorm:"column:executor_id"`

	Status        DealStatus `json:"status" gorm:"column:status;default:open"`
	StageName     string     `json:"stage_name,omitempty" gorm:"column:stage_name"`
	ClosingReason string     `json:"closing_reason,omitempty" gorm:"column:closing_reason;type:text"`

	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" gorm:"column:expected_close_date"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Deal) TableName() string { return "deals" }

// IsClosed reports whether the deal is in a terminal status.
func (d *Deal) IsClosed() bool {
	return ClosingStatuses[d.Status]
}

func (d *Deal) IsDeleted() bool {
	return d.DeletedAt != nil
}
