package middleware

// identity.go provides typed accessors for the identity values that
// Authenticate stores in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

// CurrentUser returns the authenticated user attached to the context,
// or false when the request is anonymous.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ContextUserKey).(model.User)
	return u, ok
}

// CurrentProject returns the project resolved by RequireProjectAccess.
func CurrentProject(c echo.Context) (model.Project, bool) {
	p, ok := c.Get(ContextProjectKey).(model.Project)
	return p, ok
}

// currentUserID returns the authenticated user id as a string for use
// in rate-limit keys, or "anon" for anonymous requests.
func currentUserID(c echo.Context) string {
	if id, ok := c.Get(ContextUserIDKey).(uint64); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
