package domain

import "time"

// Object type tags used in audit_logs rows.
const (
	ObjectDeal            = "deal"
	ObjectClient          = "client"
	ObjectQuote           = "quote"
	ObjectPolicy          = "policy"
	ObjectPayment         = "payment"
	ObjectFinancialRecord = "financial_record"
	ObjectTask            = "task"
	ObjectNote            = "note"
	ObjectDocument        = "document"
)

// AuditLog is an append-only record of a mutation. Rows are never updated.
type AuditLog struct {
	ID          int64     `json:"id" gorm:"column:id;primaryKey"`
	ObjectType  string    `json:"object_type" gorm:"column:object_type;index:idx_audit_object"`
	ObjectID    string    `json:"object_id" gorm:"column:object_id;index:idx_audit_object"`
	Action      string    `json:"action" gorm:"column:action"`
	ObjectName  string    `json:"object_name" gorm:"column:object_name"`
	Description string    `json:"description,omitempty" gorm:"column:description;type:text"`
	ActorID     *int64    `json:"actor_id,omitempty" gorm:"column:actor_id"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
