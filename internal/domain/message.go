package domain

import "time"

// Message is a chat message in a deal's discussion thread.
type Message struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey"`
	DealID    int64     `json:"deal_id" gorm:"column:deal_id;index" validate:"required"`
	AuthorID  int64     `json:"author_id" gorm:"column:author_id"`
	Text      string    `json:"text" gorm:"column:text;type:text" validate:"required"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Message) TableName() string { return "messages" }
