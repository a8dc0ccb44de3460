package access

import (
	"gorm.io/gorm"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

// GormMembershipStore loads memberships from the relational database
type GormMembershipStore struct {
	db *gorm.DB
}

// NewGormMembershipStore creates a membership store over the given database
func NewGormMembershipStore(db *gorm.DB) *GormMembershipStore {
	return &GormMembershipStore{db: db}
}

func (s *GormMembershipStore) ActiveMembership(userID, tenantID uint) (*model.UserTenantPermission, error) {
	var membership model.UserTenantPermission
	result := s.db.Preload("Tenant").
		Where("user_id = ? AND tenant_id = ? AND active = ?", userID, tenantID, true).
		First(&membership)
	if result.Error != nil {
		return nil, result.Error
	}
	return &membership, nil
}

func (s *GormMembershipStore) ActiveMemberships(userID uint) ([]model.UserTenantPermission, error) {
	var memberships []model.UserTenantPermission
	result := s.db.Preload("Tenant").
		Where("user_id = ? AND active = ?", userID, true).
		Order("tenant_id asc").
		Find(&memberships)
	if result.Error != nil {
		return nil, result.Error
	}
	return memberships, nil
}
