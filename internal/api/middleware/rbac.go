package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC enforces role-based access control. It must run after Auth: a
// request with no resolved user is rejected as forbidden, not
// unauthenticated — "you are nobody" is the auth middleware's verdict,
// "you are somebody but not allowed" is this one's.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "user not authenticated"})
			}
			if _, ok := allowed[user.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": fmt.Sprintf("role %q is not allowed to access this resource", user.Role),
				})
			}
			return next(c)
		}
	}
}
