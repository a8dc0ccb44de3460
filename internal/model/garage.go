package model

import (
	"time"

	"gorm.io/gorm"
)

// Garage represents a garage location belonging to a tenant
type Garage struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_garage_tenant_code"`
	Name      string         `json:"name" gorm:"type:varchar(100);index;not null"`
	Code      string         `json:"code" gorm:"type:varchar(50);uniqueIndex:idx_garage_tenant_code"` // unique per tenant
	Address   string         `json:"address" gorm:"type:text"`
	City      string         `json:"city" gorm:"type:varchar(50)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Capacity  int            `json:"capacity" gorm:"default:0"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedBy uint           `json:"created_by" gorm:"index"`
	UpdatedBy uint           `json:"updated_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (g *Garage) OwnerTenantID() uint { return g.TenantID }
