package model

import (
	"time"

	"gorm.io/gorm"
)

// Reception report statuses
const (
	ReceptionStatusDraft     = "draft"
	ReceptionStatusSubmitted = "submitted"
	ReceptionStatusValidated = "validated"
)

// InterventionReceptionReport records the state of a vehicle received for an
// intervention at a garage
type InterventionReceptionReport struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	TenantID           uint           `json:"tenant_id" gorm:"index;not null"`
	VehicleID          uint           `json:"vehicle_id" gorm:"index;not null"`
	InterventionTypeID uint           `json:"intervention_type_id" gorm:"index;not null"`
	GarageID           *uint          `json:"garage_id,omitempty" gorm:"index"`
	Summary            string         `json:"summary" gorm:"type:varchar(255)"`
	Findings           string         `json:"findings" gorm:"type:text"`
	Odometer           int            `json:"odometer" gorm:"default:0"`
	Status             string         `json:"status" gorm:"type:varchar(16);default:'draft'"`
	ReceivedAt         time.Time      `json:"received_at"`
	CreatedBy          uint           `json:"created_by" gorm:"index"`
	UpdatedBy          uint           `json:"updated_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	Vehicle          *Vehicle          `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	InterventionType *InterventionType `json:"intervention_type,omitempty" gorm:"foreignKey:InterventionTypeID"`
	Garage           *Garage           `json:"garage,omitempty" gorm:"foreignKey:GarageID"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (r *InterventionReceptionReport) OwnerTenantID() uint { return r.TenantID }
