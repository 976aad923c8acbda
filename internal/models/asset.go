package models

import (
	"time"

	"gorm.io/datatypes"
)

// Asset is a stored media file owned by a catalog entity.
type Asset struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	ProductID   uint              `json:"product_id" gorm:"index;not null"`
	FileName    string            `json:"file_name" gorm:"not null"`
	StorageKey  string            `json:"storage_key" gorm:"not null"`
	URL         string            `json:"url"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Width       int               `json:"width,omitempty"`
	Height      int               `json:"height,omitempty"`
	Derivatives datatypes.JSONMap `json:"derivatives,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (a *Asset) TableName() string {
	return "assets"
}
