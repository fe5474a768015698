package domain

import "time"

type Document struct {
	ID         int64      `json:"id" gorm:"column:id;primaryKey"`
	DealID     int64      `json:"deal_id" gorm:"column:deal_id;index"`
	Name       string     `json:"name" gorm:"column:name"`
	MimeType   string     `json:"mime_type" gorm:"column:mime_type"`
	Size       int64      `json:"size" gorm:"column:size"`
	FileID     string     `json:"file_id" gorm:"column:file_id"`
	FolderID   string     `json:"folder_id" gorm:"column:folder_id"`
	UploadedBy int64      `json:"uploaded_by" gorm:"column:uploaded_by"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (Document) TableName() string { return "documents" }
