package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/jwtutil"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

// ListUserTenants retrieves all tenants the authenticated user belongs to
func ListUserTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var memberships []model.UserTenantPermission
	result := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND active = ?", userID, true).
		Order("tenant_id asc").
		Find(&memberships)
	if result.Error != nil {
		log.Error("Failed to retrieve user's tenants", zap.Error(result.Error))
		return response.Internal(c)
	}

	type tenantEntry struct {
		ID          uint      `json:"id"`
		Name        string    `json:"name"`
		Slug        string    `json:"slug"`
		Description string    `json:"description"`
		Role        string    `json:"role"`
		IsPrimary   bool      `json:"is_primary"`
		CreatedAt   time.Time `json:"created_at"`
	}

	entries := make([]tenantEntry, 0, len(memberships))
	for _, m := range memberships {
		entries = append(entries, tenantEntry{
			ID:          m.TenantID,
			Name:        m.Tenant.Name,
			Slug:        m.Tenant.Slug,
			Description: m.Tenant.Description,
			Role:        m.Role,
			IsPrimary:   m.IsPrimary,
			CreatedAt:   m.Tenant.CreatedAt,
		})
	}

	return response.OK(c, entries)
}

// GetTenant retrieves details of one tenant the user has access to
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid tenant ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var membership model.UserTenantPermission
	result := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND tenant_id = ? AND active = ?", userID, id, true).
		First(&membership)
	if result.Error != nil {
		log.Warn("Unauthorized tenant access attempt",
			zap.Uint("user_id", userID),
			zap.Uint64("tenant_id", id))
		prometheus.RecordAuthError("tenant_access_denied")
		return response.Forbidden(c, "access denied to the specified tenant")
	}

	return response.OK(c, membership.Tenant)
}

// SwitchTenant issues a new token scoped to another tenant the user belongs to
func SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("switch")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}
	email, _ := c.Get("email").(string)

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.TenantID == 0 {
		return response.BadRequest(c, "tenant_id is required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var membership model.UserTenantPermission
	result := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND tenant_id = ? AND active = ?", userID, req.TenantID, true).
		First(&membership)
	if result.Error != nil {
		log.Warn("Unauthorized tenant switch attempt",
			zap.Uint("user_id", userID),
			zap.Uint("tenant_id", req.TenantID))
		prometheus.RecordAuthError("tenant_access_denied")
		return response.Forbidden(c, "access denied to the specified tenant")
	}

	tenantID := req.TenantID
	token, err := jwtutil.GenerateTokenWithTenant(email, userID, &tenantID, membership.Tenant.Name, membership.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return response.Internal(c)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User switched tenant",
		zap.Uint("user_id", userID),
		zap.Uint("tenant_id", req.TenantID))

	return response.OK(c, echo.Map{
		"token": token,
		"tenant": echo.Map{
			"id":   membership.TenantID,
			"name": membership.Tenant.Name,
			"role": membership.Role,
		},
	})
}

// SetPrimaryTenant marks a membership as the user's primary tenant. All other
// memberships of the user lose the flag inside the same transaction, keeping
// at most one primary row per user.
func SetPrimaryTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("set_primary")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.TenantID == 0 {
		return response.BadRequest(c, "tenant_id is required")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return response.Internal(c)
	}

	var membership model.UserTenantPermission
	result := tx.Where("user_id = ? AND tenant_id = ? AND active = ?", userID, req.TenantID, true).First(&membership)
	if result.Error != nil {
		tx.Rollback()
		log.Warn("Unauthorized primary tenant set attempt",
			zap.Uint("user_id", userID),
			zap.Uint("tenant_id", req.TenantID))
		prometheus.RecordAuthError("tenant_access_denied")
		return response.Forbidden(c, "access denied to the specified tenant")
	}

	if err := tx.Model(&model.UserTenantPermission{}).
		Where("user_id = ?", userID).
		Update("is_primary", false).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to clear primary flags", zap.Error(err))
		return response.Internal(c)
	}

	membership.IsPrimary = true
	if err := tx.Save(&membership).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to set primary tenant", zap.Error(err))
		return response.Internal(c)
	}

	if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("tenant_id", req.TenantID).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to update user's primary tenant pointer", zap.Error(err))
		return response.Internal(c)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return response.Internal(c)
	}

	log.Info("Set primary tenant",
		zap.Uint("user_id", userID),
		zap.Uint("tenant_id", req.TenantID))
	return response.Message(c, http.StatusOK, "primary tenant set successfully")
}
