package access

import (
	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

// TenantOwned is implemented by every tenant-scoped entity
type TenantOwned interface {
	OwnerTenantID() uint
}

// Context is the per-request authorization context: the authenticated
// principal plus the tenant the request resolved to. It is built once by
// middleware and passed to handlers; nothing here touches global state.
type Context struct {
	UserID     uint
	Email      string
	Membership model.UserTenantPermission
}

// NewContext builds an authorization context from a resolved membership
func NewContext(userID uint, email string, membership model.UserTenantPermission) *Context {
	return &Context{UserID: userID, Email: email, Membership: membership}
}

// TenantID returns the resolved tenant's id
func (c *Context) TenantID() uint {
	return c.Membership.TenantID
}

// Tenant returns the resolved tenant
func (c *Context) Tenant() model.Tenant {
	return c.Membership.Tenant
}

// Role returns the principal's role within the resolved tenant
func (c *Context) Role() string {
	return c.Membership.Role
}

// Can reports whether the principal may perform the action on the resource
// type within the resolved tenant
func (c *Context) Can(resource, action string) bool {
	return c.Membership.Permissions.Allows(resource, action)
}

// IsAdmin reports whether the principal holds an administrative flag for the
// resolved tenant
func (c *Context) IsAdmin() bool {
	return c.Membership.Permissions.IsAdmin()
}

// Owns reports whether an entity belonging to the given tenant belongs to
// the resolved tenant
func (c *Context) Owns(entityTenantID uint) bool {
	return entityTenantID == c.TenantID()
}

// OwnsEntity validates that a loaded entity belongs to the resolved tenant
func (c *Context) OwnsEntity(entity TenantOwned) bool {
	return c.Owns(entity.OwnerTenantID())
}
