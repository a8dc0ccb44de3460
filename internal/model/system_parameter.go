package model

import (
	"time"

	"gorm.io/gorm"
)

// SystemParameter is a key/value configuration row. A nil TenantID marks a
// global parameter visible to every tenant.
type SystemParameter struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    *uint          `json:"tenant_id,omitempty" gorm:"index;uniqueIndex:idx_param_tenant_key"`
	Key         string         `json:"key" gorm:"type:varchar(100);not null;uniqueIndex:idx_param_tenant_key"`
	Value       string         `json:"value" gorm:"type:text"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
