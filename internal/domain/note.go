package domain

import "time"

type Note struct {
	ID        int64      `json:"id" gorm:"column:id;primaryKey"`
	DealID    int64      `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	AuthorID  int64      `json:"author_id" gorm:"column:author_id"`
	Text      string     `json:"text" gorm:"column:text;type:text" validate:"required"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Note) TableName() string { return "notes" }
