package model

import (
	"time"

	"gorm.io/gorm"
)

// Alert severities
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// Alert is a notification row raised for a tenant, optionally tied to a vehicle
type Alert struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	VehicleID *uint          `json:"vehicle_id,omitempty" gorm:"index"`
	Type      string         `json:"type" gorm:"type:varchar(50);not null"`
	Severity  string         `json:"severity" gorm:"type:varchar(16);default:'info'"`
	Title     string         `json:"title" gorm:"type:varchar(100);not null"`
	Message   string         `json:"message" gorm:"type:text"`
	IsRead    bool           `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (a *Alert) OwnerTenantID() uint { return a.TenantID }
