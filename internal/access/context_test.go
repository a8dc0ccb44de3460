package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

func TestContextOwnership(t *testing.T) {
	ac := NewContext(1, "jane@example.com", model.UserTenantPermission{
		UserID:   1,
		TenantID: 10,
	})

	assert.True(t, ac.Owns(10))
	assert.False(t, ac.Owns(20))

	vehicle := &model.Vehicle{TenantID: 10}
	other := &model.Garage{TenantID: 20}
	assert.True(t, ac.OwnsEntity(vehicle))
	assert.False(t, ac.OwnsEntity(other))
}

func TestContextCapabilities(t *testing.T) {
	ac := NewContext(1, "jane@example.com", model.UserTenantPermission{
		UserID:   1,
		TenantID: 10,
		Role:     "member",
		Permissions: model.PermissionSet{
			Resources: map[string]model.ResourceGrant{
				model.ResourceVehicles: {Create: true, Read: true},
			},
		},
	})

	assert.True(t, ac.Can(model.ResourceVehicles, model.ActionCreate))
	assert.True(t, ac.Can(model.ResourceVehicles, model.ActionRead))
	assert.False(t, ac.Can(model.ResourceVehicles, model.ActionDelete))
	assert.False(t, ac.Can(model.ResourceGarages, model.ActionRead))
	assert.False(t, ac.IsAdmin())
}

func TestContextAdminBypassesGrants(t *testing.T) {
	ac := NewContext(1, "admin@example.com", model.UserTenantPermission{
		UserID:      1,
		TenantID:    10,
		Role:        "owner",
		Permissions: model.PermissionSet{TenantAdmin: true},
	})

	assert.True(t, ac.IsAdmin())
	assert.True(t, ac.Can(model.ResourceGarages, model.ActionDelete))
	assert.True(t, ac.Can(model.ResourceReports, model.ActionCreate))
}
