package domain

import "time"

// Task belongs to a deal but deliberately survives the deal's cascade:
// deleting a deal must never delete its tasks.
type Task struct {
	ID          int64      `json:"id" gorm:"column:id;primaryKey"`
	DealID      int64      `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	Title       string     `json:"title" gorm:"column:title" validate:"required"`
	AssigneeID  *int64     `json:"assignee_id,omitempty" gorm:"column:assignee_id"`
	DueDate     *time.Time `json:"due_date,omitempty" gorm:"column:due_date"`
	CompletedBy *int64     `json:"completed_by,omitempty" gorm:"column:completed_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) IsCompleted() bool {
	return t.CompletedAt != nil
}
