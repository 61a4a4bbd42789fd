package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

var errRoleNotPermitted = echo.NewHTTPError(http.StatusForbidden, "role not permitted")

// RBAC must run after Auth. Requests whose role claim is not listed are
// rejected with 403 before the handler runs.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ClaimRole).(string)
			if role == "" || !slices.Contains(roles, role) {
				return errRoleNotPermitted
			}
			return next(c)
		}
	}
}
