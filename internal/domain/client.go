package domain

import "time"

type Client struct {
	ID        int64      `json:"id" gorm:"column:id;primaryKey"`
	Name      string     `json:"name" gorm:"column:name" validate:"required"`
	Phone     string     `json:"phone,omitempty" gorm:"column:phone"`
	Email     string     `json:"email,omitempty" gorm:"column:email"`
	BirthDate *time.Time `json:"birth_date,omitempty" gorm:"column:birth_date"`
	Notes     string     `json:"notes,omitempty" gorm:"column:notes;type:text"`
	CreatedBy int64      `json:"created_by" gorm:"column:created_by"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Client) TableName() string { return "clients" }
