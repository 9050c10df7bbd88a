package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/model"
)

// RequireRole enforces a minimum global role by hierarchy rank: any
// role at or above the required rank passes. It assumes Authenticate
// ran earlier in the chain.
//
// Denials name the required and held roles. Unlike login failures this
// leaks nothing useful to an attacker, so the specificity is kept for
// the client's benefit.
func RequireRole(required model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return respondError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
			}
			if !auth.HasRole(u.Role, required) {
				return respondError(c, auth.New(auth.KindAuthorization, auth.CodeRoleRequired,
					fmt.Sprintf("requires role %s or higher, current role is %s", required, u.Role)))
			}
			return next(c)
		}
	}
}

// RequirePermission enforces an explicitly listed capability. There is
// no hierarchy fallback here: a role holds exactly the permissions in
// its table entry.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return respondError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
			}
			if !auth.HasPermission(u.Role, permission) {
				return respondError(c, auth.New(auth.KindAuthorization, auth.CodePermissionRequired,
					fmt.Sprintf("requires permission %s, role %s does not hold it", permission, u.Role)))
			}
			return next(c)
		}
	}
}
