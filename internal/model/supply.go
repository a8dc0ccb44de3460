package model

import (
	"time"

	"gorm.io/gorm"
)

// Supply represents a stocked part or consumable belonging to a tenant
type Supply struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_supply_tenant_ref"`
	CategoryID  uint           `json:"category_id" gorm:"index;not null"`
	SupplierID  *uint          `json:"supplier_id,omitempty" gorm:"index"`
	Name        string         `json:"name" gorm:"type:varchar(100);index;not null"`
	Reference   string         `json:"reference" gorm:"type:varchar(50);uniqueIndex:idx_supply_tenant_ref"` // unique per tenant
	Description string         `json:"description" gorm:"type:text"`
	UnitPrice   float64        `json:"unit_price" gorm:"type:numeric(12,2);default:0"`
	Quantity    int            `json:"quantity" gorm:"default:0"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedBy   uint           `json:"created_by" gorm:"index"`
	UpdatedBy   uint           `json:"updated_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Category *SupplyCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Supplier *Supplier       `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (s *Supply) OwnerTenantID() uint { return s.TenantID }
