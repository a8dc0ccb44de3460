package model

import (
	"time"

	"gorm.io/gorm"
)

// Attachment records an uploaded file tied to another entity
type Attachment struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	TenantID   uint           `json:"tenant_id" gorm:"index;not null"`
	EntityType string         `json:"entity_type" gorm:"type:varchar(50);index;not null"` // "vehicles", "garages", ...
	EntityID   uint           `json:"entity_id" gorm:"index;not null"`
	FileName   string         `json:"file_name" gorm:"type:varchar(255);not null"`
	StoredPath string         `json:"-" gorm:"type:varchar(512);not null"`
	MimeType   string         `json:"mime_type" gorm:"type:varchar(100)"`
	SizeBytes  int64          `json:"size_bytes"`
	UploadedBy uint           `json:"uploaded_by" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (a *Attachment) OwnerTenantID() uint { return a.TenantID }
