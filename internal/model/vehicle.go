package model

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle statuses
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusAssigned    = "assigned"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

// Vehicle represents a fleet vehicle belonging to a tenant
type Vehicle struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_vehicle_tenant_plate"`
	PlateNumber string         `json:"plate_number" gorm:"type:varchar(32);not null;uniqueIndex:idx_vehicle_tenant_plate"` // unique per tenant
	VIN         string         `json:"vin" gorm:"type:varchar(64)"`
	Brand       string         `json:"brand" gorm:"type:varchar(50)"`
	Model       string         `json:"model" gorm:"type:varchar(64)"`
	Year        int            `json:"year"`
	Mileage     int            `json:"mileage" gorm:"default:0"`
	Status      string         `json:"status" gorm:"type:varchar(16);default:'available'"`
	CategoryID  *uint          `json:"category_id,omitempty" gorm:"index"`
	ColorID     *uint          `json:"color_id,omitempty" gorm:"index"`
	GarageID    *uint          `json:"garage_id,omitempty" gorm:"index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedBy   uint           `json:"created_by" gorm:"index"`
	UpdatedBy   uint           `json:"updated_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Category *VehicleCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Color    *VehicleColor    `json:"color,omitempty" gorm:"foreignKey:ColorID"`
	Garage   *Garage          `json:"garage,omitempty" gorm:"foreignKey:GarageID"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (v *Vehicle) OwnerTenantID() uint { return v.TenantID }
