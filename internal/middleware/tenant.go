package middleware

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

const accessContextKey = "access_context"

// TenantHeader carries an explicit tenant hint; the query parameter is the
// lower-precedence alternative
const (
	TenantHeader     = "X-Tenant-ID"
	TenantQueryParam = "tenant_id"
)

// TenantContext resolves the tenant every downstream handler is scoped to and
// stores the resulting authorization context in the request. Must run after
// AuthMiddleware.
func TenantContext(resolver *access.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			prometheus.RecordTenantOperation("resolve")

			userID, ok := c.Get("user_id").(uint)
			if !ok || userID == 0 {
				log.Error("Missing principal in request context")
				prometheus.RecordAuthError("unauthenticated")
				return response.Unauthorized(c, "authentication required")
			}

			hint, err := tenantHint(c)
			if err != nil {
				log.Warn("Malformed tenant hint", zap.Error(err))
				return response.BadRequest(c, "invalid tenant id")
			}

			membership, err := resolver.Resolve(userID, hint)
			if err != nil {
				switch {
				case errors.Is(err, access.ErrTenantAccessDenied):
					log.Warn("Tenant access denied",
						zap.Uint("user_id", userID),
						zap.Uintp("tenant_hint", hint))
					prometheus.RecordAuthError("tenant_access_denied")
					return response.Forbidden(c, "access denied to the specified tenant")
				case errors.Is(err, access.ErrNoAccessibleTenant):
					log.Warn("User has no accessible tenant", zap.Uint("user_id", userID))
					prometheus.TenantContextMissingCounter.Inc()
					return response.Forbidden(c, "no accessible tenant")
				case errors.Is(err, access.ErrUnauthenticated):
					prometheus.RecordAuthError("unauthenticated")
					return response.Unauthorized(c, "authentication required")
				default:
					log.Error("Tenant resolution failed", zap.Error(err))
					prometheus.RecordAuthError("db_error")
					return response.Internal(c)
				}
			}

			email, _ := c.Get("email").(string)
			ac := access.NewContext(userID, email, *membership)
			c.Set(accessContextKey, ac)

			ctxLogger := log.With(
				zap.Uint("tenant_id", ac.TenantID()),
				zap.String("tenant_name", ac.Tenant().Name),
				zap.String("role", ac.Role()),
			)
			c.Set("logger", ctxLogger)

			return next(c)
		}
	}
}

// AccessFromContext retrieves the authorization context built by TenantContext
func AccessFromContext(c echo.Context) (*access.Context, bool) {
	ac, ok := c.Get(accessContextKey).(*access.Context)
	return ac, ok
}

// tenantHint reads the explicit tenant hint: header first, query param second
func tenantHint(c echo.Context) (*uint, error) {
	raw := c.Request().Header.Get(TenantHeader)
	if raw == "" {
		raw = c.QueryParam(TenantQueryParam)
	}
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, errors.New("invalid tenant id")
	}
	hint := uint(id)
	return &hint, nil
}
