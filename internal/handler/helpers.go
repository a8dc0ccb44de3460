package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/middleware"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

// requireAccess pulls the authorization context built by the tenant-context
// middleware. The returned error, when non-nil, has already been written.
func requireAccess(c echo.Context) (*access.Context, error) {
	ac, ok := middleware.AccessFromContext(c)
	if !ok {
		logger.FromContext(c).Error("Missing authorization context")
		prometheus.RecordAuthError("missing_access_context")
		return nil, response.Unauthorized(c, "authentication required")
	}
	return ac, nil
}

// requireCapability additionally checks a capability grant and writes the 403
// when the principal lacks it
func requireCapability(c echo.Context, resource, action string) (*access.Context, error) {
	ac, err := requireAccess(c)
	if err != nil {
		return nil, err
	}
	if !ac.Can(resource, action) {
		logger.FromContext(c).Warn("Insufficient permission for " + action + " on " + resource)
		prometheus.RecordAuthError("insufficient_permission")
		return nil, response.Forbidden(c, "insufficient permission")
	}
	return ac, nil
}

// idParam parses the :id route parameter
func idParam(c echo.Context) (uint, error) {
	return idParamNamed(c, "id")
}

// idParamNamed parses an arbitrary numeric route parameter
func idParamNamed(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
