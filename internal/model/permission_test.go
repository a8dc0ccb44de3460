package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionSetAllows(t *testing.T) {
	p := PermissionSet{
		Resources: map[string]ResourceGrant{
			ResourceVehicles: {Create: true, Read: true},
			ResourceGarages:  {Read: true},
		},
	}

	assert.True(t, p.Allows(ResourceVehicles, ActionCreate))
	assert.True(t, p.Allows(ResourceGarages, ActionRead))
	assert.False(t, p.Allows(ResourceGarages, ActionDelete))
	assert.False(t, p.Allows(ResourceSuppliers, ActionRead), "no grant at all")
	assert.False(t, p.Allows(ResourceVehicles, "unknown"))
	assert.False(t, p.IsAdmin())
}

func TestPermissionSetAdminFlags(t *testing.T) {
	assert.True(t, PermissionSet{SuperAdmin: true}.Allows(ResourceAlerts, ActionDelete))
	assert.True(t, PermissionSet{TenantAdmin: true}.Allows(ResourceReports, ActionUpdate))
	assert.True(t, PermissionSet{TenantAdmin: true}.IsAdmin())
}

func TestPermissionSetScanValueRoundTrip(t *testing.T) {
	original := PermissionSet{
		TenantAdmin: true,
		Resources: map[string]ResourceGrant{
			ResourceSupplies: {Create: true, Read: true, Update: true},
		},
	}

	raw, err := original.Value()
	require.NoError(t, err)

	var decoded PermissionSet
	require.NoError(t, decoded.Scan([]byte(raw.(string))))
	assert.Equal(t, original, decoded)

	// postgres drivers may hand the jsonb payload over as a string
	var fromString PermissionSet
	require.NoError(t, fromString.Scan(raw.(string)))
	assert.Equal(t, original, fromString)
}

func TestPermissionSetScanNil(t *testing.T) {
	p := PermissionSet{TenantAdmin: true}
	require.NoError(t, p.Scan(nil))
	assert.False(t, p.IsAdmin())
}

func TestFullAccessGrantsEveryResource(t *testing.T) {
	p := FullAccess()
	assert.True(t, p.IsAdmin())
	for _, r := range []string{ResourceGarages, ResourceVehicles, ResourceAttachments, ResourceLookups} {
		for _, a := range []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			assert.True(t, p.Allows(r, a), "%s/%s", r, a)
		}
	}
}
