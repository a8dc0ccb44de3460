package model

import (
	"time"

	"gorm.io/gorm"
)

// VehicleColor is a lookup row. A nil TenantID marks a global entry.
type VehicleColor struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"index"`
	Name      string         `json:"name" gorm:"type:varchar(50);not null"`
	HexCode   string         `json:"hex_code" gorm:"type:varchar(7)"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
