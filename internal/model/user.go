package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated principal
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Username  string         `json:"username" gorm:"type:varchar(50);uniqueIndex"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	FirstName string         `json:"first_name" gorm:"type:varchar(50)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(50)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	UserType  string         `json:"user_type" gorm:"type:varchar(30);default:'standard'"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"index"` // convenience pointer to the primary tenant
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
