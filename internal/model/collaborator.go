package model

import (
	"time"

	"gorm.io/gorm"
)

// Collaborator represents a staff member who can be assigned vehicles
type Collaborator struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TenantID      uint           `json:"tenant_id" gorm:"index;not null"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName      string         `json:"last_name" gorm:"type:varchar(50);not null"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	LicenseNumber string         `json:"license_number" gorm:"type:varchar(50)"`
	Position      string         `json:"position" gorm:"type:varchar(50)"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedBy     uint           `json:"created_by" gorm:"index"`
	UpdatedBy     uint           `json:"updated_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (c *Collaborator) OwnerTenantID() uint { return c.TenantID }
