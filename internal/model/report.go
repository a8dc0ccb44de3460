package model

import (
	"time"

	"gorm.io/gorm"
)

// Report types
const (
	ReportTypeDashboard   = "dashboard"
	ReportTypeFleetStatus = "fleet_status"
	ReportTypeSupplyStock = "supply_stock"
)

// Report is a named, typed artifact whose generated data is cached in the
// row itself for CacheDuration seconds.
type Report struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TenantID       uint           `json:"tenant_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	Type           string         `json:"type" gorm:"type:varchar(50);not null"`
	Parameters     string         `json:"parameters" gorm:"type:jsonb"`
	CachedData     string         `json:"cached_data,omitempty" gorm:"type:jsonb"`
	CacheDuration  int            `json:"cache_duration" gorm:"default:300"` // seconds
	CacheExpiresAt *time.Time     `json:"cache_expires_at,omitempty"`
	CreatedBy      uint           `json:"created_by" gorm:"index"`
	UpdatedBy      uint           `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerTenantID exposes the owning tenant for ownership validation
func (r *Report) OwnerTenantID() uint { return r.TenantID }

// CacheValid reports whether the cached payload is still fresh at the given
// instant. A report with no expiry recorded has no valid cache.
func (r *Report) CacheValid(now time.Time) bool {
	if r.CacheExpiresAt == nil || r.CachedData == "" {
		return false
	}
	return now.Before(*r.CacheExpiresAt)
}

// StampCache stores freshly generated data and computes the new expiry
func (r *Report) StampCache(data string, now time.Time) {
	r.CachedData = data
	expiry := now.Add(time.Duration(r.CacheDuration) * time.Second)
	r.CacheExpiresAt = &expiry
}
