package model

import (
	"time"

	"gorm.io/gorm"
)

// Assignment statuses
const (
	AssignmentStatusActive   = "active"
	AssignmentStatusReturned = "returned"
)

// VehicleAssignment links a vehicle to the collaborator currently using it
type VehicleAssignment struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TenantID       uint           `json:"tenant_id" gorm:"index;not null"`
	VehicleID      uint           `json:"vehicle_id" gorm:"index;not null"`
	CollaboratorID uint           `json:"collaborator_id" gorm:"index;not null"`
	Status         string         `json:"status" gorm:"type:varchar(16);default:'active'"`
	AssignedAt     time.Time      `json:"assigned_at"`
	ReturnedAt     *time.Time     `json:"returned_at,omitempty"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedBy      uint           `json:"created_by" gorm:"index"`
	UpdatedBy      uint           `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Vehicle      *Vehicle      `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Collaborator *Collaborator `json:"collaborator,omitempty" gorm:"foreignKey:CollaboratorID"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (a *VehicleAssignment) OwnerTenantID() uint { return a.TenantID }
