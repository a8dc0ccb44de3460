package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Resource type tags used in permission payloads and capability checks
const (
	ResourceGarages          = "garages"
	ResourceVehicles         = "vehicles"
	ResourceSuppliers        = "suppliers"
	ResourceSupplies         = "supplies"
	ResourceSupplyCategories = "supply_categories"
	ResourceCollaborators    = "collaborators"
	ResourceAssignments      = "vehicle_assignments"
	ResourceInterventions    = "interventions"
	ResourceReports          = "reports"
	ResourceAlerts           = "alerts"
	ResourceAttachments      = "attachments"
	ResourceParameters       = "system_parameters"
	ResourceLookups          = "lookups"
)

// Action tags for capability checks
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ResourceGrant holds CRUD flags for a single resource type
type ResourceGrant struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// PermissionSet is the structured capability payload attached to a
// user-tenant membership. It is stored as a jsonb column.
type PermissionSet struct {
	SuperAdmin     bool                     `json:"super_admin,omitempty"`
	TenantAdmin    bool                     `json:"tenant_admin,omitempty"`
	ManageUsers    bool                     `json:"manage_users,omitempty"`
	ManageSettings bool                     `json:"manage_settings,omitempty"`
	Resources      map[string]ResourceGrant `json:"resources,omitempty"`
}

// Allows reports whether the payload grants the given action on the given
// resource type. Super-admin and tenant-admin satisfy every check.
func (p PermissionSet) Allows(resource, action string) bool {
	if p.SuperAdmin || p.TenantAdmin {
		return true
	}
	grant, ok := p.Resources[resource]
	if !ok {
		return false
	}
	switch action {
	case ActionCreate:
		return grant.Create
	case ActionRead:
		return grant.Read
	case ActionUpdate:
		return grant.Update
	case ActionDelete:
		return grant.Delete
	default:
		return false
	}
}

// IsAdmin reports whether the payload carries an administrative flag
func (p PermissionSet) IsAdmin() bool {
	return p.SuperAdmin || p.TenantAdmin
}

// Value implements driver.Valuer so GORM can persist the payload as jsonb
func (p PermissionSet) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner to read the jsonb payload back
func (p *PermissionSet) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for PermissionSet")
	}
}

// FullAccess returns a payload granting CRUD on every resource type.
// Used when seeding the owner membership of a new tenant.
func FullAccess() PermissionSet {
	all := ResourceGrant{Create: true, Read: true, Update: true, Delete: true}
	resources := map[string]ResourceGrant{}
	for _, r := range []string{
		ResourceGarages, ResourceVehicles, ResourceSuppliers, ResourceSupplies,
		ResourceSupplyCategories, ResourceCollaborators, ResourceAssignments,
		ResourceInterventions, ResourceReports, ResourceAlerts,
		ResourceAttachments, ResourceParameters, ResourceLookups,
	} {
		resources[r] = all
	}
	return PermissionSet{TenantAdmin: true, Resources: resources}
}
