package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
)

type stubMembershipStore struct {
	rows []model.UserTenantPermission
}

func (s *stubMembershipStore) ActiveMembership(userID, tenantID uint) (*model.UserTenantPermission, error) {
	for _, m := range s.rows {
		if m.UserID == userID && m.TenantID == tenantID && m.Active {
			row := m
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMembershipStore) ActiveMemberships(userID uint) ([]model.UserTenantPermission, error) {
	var out []model.UserTenantPermission
	for _, m := range s.rows {
		if m.UserID == userID && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

// runTenantContext sends a request through the middleware with an
// authenticated principal and returns the recorder plus the tenant id the
// handler observed (0 when the handler never ran)
func runTenantContext(t *testing.T, store access.MembershipStore, configure func(*http.Request)) (*httptest.ResponseRecorder, uint) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/admin", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint(1))
	c.Set("email", "jane@example.com")

	var seenTenant uint
	handler := TenantContext(access.NewResolver(store))(func(c echo.Context) error {
		ac, ok := AccessFromContext(c)
		require.True(t, ok)
		seenTenant = ac.TenantID()
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seenTenant
}

func TestTenantContextHeaderHint(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
		{UserID: 1, TenantID: 20, Active: true},
	}}

	rec, tenant := runTenantContext(t, store, func(req *http.Request) {
		req.Header.Set(TenantHeader, "20")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(20), tenant)
}

func TestTenantContextHeaderBeatsQueryParam(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true},
		{UserID: 1, TenantID: 20, Active: true},
	}}

	rec, tenant := runTenantContext(t, store, func(req *http.Request) {
		req.Header.Set(TenantHeader, "20")
		q := req.URL.Query()
		q.Set(TenantQueryParam, "10")
		req.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(20), tenant)
}

func TestTenantContextQueryParamHint(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
		{UserID: 1, TenantID: 20, Active: true},
	}}

	rec, tenant := runTenantContext(t, store, func(req *http.Request) {
		q := req.URL.Query()
		q.Set(TenantQueryParam, "20")
		req.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(20), tenant)
}

func TestTenantContextFallsBackToPrimary(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true},
		{UserID: 1, TenantID: 20, Active: true, IsPrimary: true},
	}}

	rec, tenant := runTenantContext(t, store, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(20), tenant)
}

func TestTenantContextDeniedHint(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true, IsPrimary: true},
	}}

	rec, _ := runTenantContext(t, store, func(req *http.Request) {
		req.Header.Set(TenantHeader, "99")
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestTenantContextNoMemberships(t *testing.T) {
	rec, _ := runTenantContext(t, &stubMembershipStore{}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTenantContextMalformedHint(t *testing.T) {
	store := &stubMembershipStore{rows: []model.UserTenantPermission{
		{UserID: 1, TenantID: 10, Active: true},
	}}

	rec, _ := runTenantContext(t, store, func(req *http.Request) {
		req.Header.Set(TenantHeader, "not-a-number")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantContextRequiresPrincipal(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := TenantContext(access.NewResolver(&stubMembershipStore{}))(func(c echo.Context) error {
		t.Fatal("handler should not run without a principal")
		return nil
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
