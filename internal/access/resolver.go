package access

import (
	"errors"

	"gorm.io/gorm"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

// Resolution failure signals
var (
	// ErrUnauthenticated means no principal was supplied
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNoAccessibleTenant means the principal has no active tenant memberships
	ErrNoAccessibleTenant = errors.New("no accessible tenant")
	// ErrTenantAccessDenied means a tenant hint was given but the principal
	// holds no active membership for it
	ErrTenantAccessDenied = errors.New("access denied to the specified tenant")
)

// MembershipStore loads user-tenant memberships for the resolver
type MembershipStore interface {
	// ActiveMembership returns the principal's active membership for one
	// tenant, or gorm.ErrRecordNotFound
	ActiveMembership(userID, tenantID uint) (*model.UserTenantPermission, error)
	// ActiveMemberships returns all active memberships of the principal
	// ordered by tenant id ascending
	ActiveMemberships(userID uint) ([]model.UserTenantPermission, error)
}

// Resolver determines the tenant an operation is scoped to
type Resolver struct {
	store MembershipStore
}

// NewResolver creates a resolver over the given membership store
func NewResolver(store MembershipStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the membership scoping the current operation.
//
// With a hint the principal must hold an active membership for that exact
// tenant. Without one the primary active membership wins; failing that, the
// active membership with the smallest tenant id is used so the fallback stays
// deterministic.
func (r *Resolver) Resolve(userID uint, hint *uint) (*model.UserTenantPermission, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	if hint != nil {
		membership, err := r.store.ActiveMembership(userID, *hint)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTenantAccessDenied
			}
			return nil, err
		}
		return membership, nil
	}

	memberships, err := r.store.ActiveMemberships(userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, ErrNoAccessibleTenant
	}

	for i := range memberships {
		if memberships[i].IsPrimary {
			return &memberships[i], nil
		}
	}
	return &memberships[0], nil
}
