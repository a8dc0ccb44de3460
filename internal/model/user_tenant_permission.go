package model

import (
	"time"

	"gorm.io/gorm"
)

// UserTenantPermission associates a user with a tenant and carries the
// capability grants the user holds inside that tenant. A user may belong to
// multiple tenants; at most one active row per user is marked primary.
type UserTenantPermission struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_tenant"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_user_tenant"`
	Role        string         `json:"role" gorm:"type:varchar(50);not null;default:'member'"` // 'owner', 'admin', 'member', ...
	IsPrimary   bool           `json:"is_primary" gorm:"default:false"`                        // the user's default tenant
	Active      bool           `json:"active" gorm:"default:true"`
	Permissions PermissionSet  `json:"permissions" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}
