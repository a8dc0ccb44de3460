package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/jwtutil"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

// Login exchanges email-or-username + password for a JWT. When the user has
// an accessible tenant the token carries the tenant context; an explicit
// tenant_id in the body acts as the hint.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
		TenantID *uint  `json:"tenant_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.BadRequest(c, "invalid request")
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_credentials")
		return response.BadRequest(c, "email or username and password are required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ? OR username = ?", identifier, identifier).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("identifier", identifier))
		prometheus.RecordAuthError("user_not_found")
		return response.Unauthorized(c, "invalid credentials")
	}

	if !user.IsActive {
		log.Warn("Login attempt for disabled user", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("user_disabled")
		return response.Unauthorized(c, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("invalid_password")
		return response.Unauthorized(c, "invalid credentials")
	}

	// Resolve the tenant context the token should carry. Login still
	// succeeds without one; tenant-scoped routes will reject later.
	resolver := access.NewResolver(access.NewGormMembershipStore(database.GetDB()))
	var token string
	var tenantData echo.Map
	membership, err := resolver.Resolve(user.ID, req.TenantID)
	switch {
	case err == nil:
		tenantID := membership.TenantID
		token, err = jwtutil.GenerateTokenWithTenant(user.Email, user.ID, &tenantID, membership.Tenant.Name, membership.Role)
		if err == nil {
			tenantData = echo.Map{
				"id":   membership.TenantID,
				"name": membership.Tenant.Name,
				"role": membership.Role,
			}
		}
	case errors.Is(err, access.ErrTenantAccessDenied):
		log.Warn("Login with inaccessible tenant hint",
			zap.Uint("user_id", user.ID),
			zap.Uintp("tenant_id", req.TenantID))
		prometheus.RecordAuthError("tenant_access_denied")
		return response.Forbidden(c, "access denied to the specified tenant")
	case errors.Is(err, access.ErrNoAccessibleTenant):
		token, err = jwtutil.GenerateToken(user.Email, user.ID)
	}
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return response.Internal(c)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("email", user.Email))

	data := echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"full_name": user.FullName(),
			"user_type": user.UserType,
		},
	}
	if tenantData != nil {
		data["tenant"] = tenantData
	}
	return response.OK(c, data)
}

// Register creates a new user account
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.BadRequest(c, "invalid request")
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return response.BadRequest(c, "email, username and password are required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	result := database.GetDB().Where("email = ? OR username = ?", req.Email, req.Username).First(&existing)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_already_exists")
		return response.Conflict(c, "email or username already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return response.Internal(c)
	}

	user := model.User{
		Email:     req.Email,
		Username:  req.Username,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return response.Internal(c)
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return response.Created(c, echo.Map{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// Me returns the authenticated user's profile and tenant memberships
func Me(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		prometheus.RecordAuthError("user_not_found")
		return response.NotFound(c, "user not found")
	}

	var memberships []model.UserTenantPermission
	database.GetDB().Preload("Tenant").
		Where("user_id = ? AND active = ?", userID, true).
		Order("tenant_id asc").
		Find(&memberships)

	tenants := make([]echo.Map, 0, len(memberships))
	for _, m := range memberships {
		tenants = append(tenants, echo.Map{
			"id":         m.TenantID,
			"name":       m.Tenant.Name,
			"slug":       m.Tenant.Slug,
			"role":       m.Role,
			"is_primary": m.IsPrimary,
		})
	}

	return response.OK(c, echo.Map{
		"user":    user,
		"tenants": tenants,
	})
}

// ChangePassword updates the authenticated user's password
func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthenticated")
		return response.Unauthorized(c, "authentication required")
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "current_password and new_password are required")
	}

	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		prometheus.RecordAuthError("user_not_found")
		return response.NotFound(c, "user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		log.Warn("Password change with wrong current password", zap.Uint("user_id", userID))
		prometheus.RecordAuthError("invalid_password")
		return response.Unauthorized(c, "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return response.Internal(c)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&user).Update("password", string(hashed)).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		return response.Internal(c)
	}

	log.Info("Password changed", zap.Uint("user_id", userID))
	return response.Message(c, http.StatusOK, "password updated successfully")
}
