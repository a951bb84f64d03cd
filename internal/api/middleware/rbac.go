package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// unauthenticatedReason is the boundary message for protected operations
// reached without a valid identity. Deliberately generic.
const unauthenticatedReason = "full authentication is required to access this resource"

// RequireRoles enforces role-based access. Fail-closed: no bound identity →
// 401 (the unauthenticated-access boundary), identity lacking every allowed
// role → 403.
func RequireRoles(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, unauthenticatedReason)
			}
			for _, role := range ident.Roles {
				if _, ok := allowed[role]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
		}
	}
}
