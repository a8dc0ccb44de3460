package access

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

// fakeMembershipStore keeps memberships in memory keyed by user id
type fakeMembershipStore struct {
	memberships map[uint][]model.UserTenantPermission
}

func newFakeStore(rows ...model.UserTenantPermission) *fakeMembershipStore {
	s := &fakeMembershipStore{memberships: map[uint][]model.UserTenantPermission{}}
	for _, row := range rows {
		s.memberships[row.UserID] = append(s.memberships[row.UserID], row)
	}
	return s
}

func (s *fakeMembershipStore) ActiveMembership(userID, tenantID uint) (*model.UserTenantPermission, error) {
	for _, m := range s.memberships[userID] {
		if m.TenantID == tenantID && m.Active {
			row := m
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeMembershipStore) ActiveMemberships(userID uint) ([]model.UserTenantPermission, error) {
	var rows []model.UserTenantPermission
	for _, m := range s.memberships[userID] {
		if m.Active {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TenantID < rows[j].TenantID })
	return rows, nil
}

func uintPtr(v uint) *uint { return &v }

func TestResolveHintHonoredWhenPermitted(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 10, Active: true, Role: "member"},
	))

	membership, err := resolver.Resolve(1, uintPtr(10))
	require.NoError(t, err)
	assert.Equal(t, uint(10), membership.TenantID)
	assert.Equal(t, "member", membership.Role)
}

func TestResolveHintOverridesPrimary(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
		model.UserTenantPermission{UserID: 1, TenantID: 20, Active: true},
	))

	// the hint wins even though tenant 10 is the primary membership
	membership, err := resolver.Resolve(1, uintPtr(20))
	require.NoError(t, err)
	assert.Equal(t, uint(20), membership.TenantID)
}

func TestResolveHintDeniedWithoutMembership(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
	))

	membership, err := resolver.Resolve(1, uintPtr(99))
	assert.Nil(t, membership)
	assert.ErrorIs(t, err, ErrTenantAccessDenied)
}

func TestResolveHintDeniedForInactiveMembership(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
		model.UserTenantPermission{UserID: 1, TenantID: 20, Active: false},
	))

	_, err := resolver.Resolve(1, uintPtr(20))
	assert.ErrorIs(t, err, ErrTenantAccessDenied)
}

func TestResolveFallsBackToPrimary(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 10, Active: true},
		model.UserTenantPermission{UserID: 1, TenantID: 20, Active: true, IsPrimary: true},
	))

	membership, err := resolver.Resolve(1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(20), membership.TenantID)
	assert.True(t, membership.IsPrimary)
}

func TestResolveWithoutPrimaryPicksSmallestTenantID(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 30, Active: true},
		model.UserTenantPermission{UserID: 1, TenantID: 5, Active: true},
		model.UserTenantPermission{UserID: 1, TenantID: 20, Active: true},
	))

	membership, err := resolver.Resolve(1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(5), membership.TenantID)
}

func TestResolveNoMemberships(t *testing.T) {
	resolver := NewResolver(newFakeStore())

	membership, err := resolver.Resolve(1, nil)
	assert.Nil(t, membership)
	assert.ErrorIs(t, err, ErrNoAccessibleTenant)
}

func TestResolveUnauthenticated(t *testing.T) {
	resolver := NewResolver(newFakeStore())

	_, err := resolver.Resolve(0, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveIgnoresInactiveMembershipsInFallback(t *testing.T) {
	resolver := NewResolver(newFakeStore(
		model.UserTenantPermission{UserID: 1, TenantID: 5, Active: false, IsPrimary: true},
		model.UserTenantPermission{UserID: 1, TenantID: 20, Active: true},
	))

	membership, err := resolver.Resolve(1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(20), membership.TenantID)
}
