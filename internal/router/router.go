package router // router wires handlers, guards and routes together

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/handler"
	"github.com/iliyamo/studio-project-hub/internal/middleware"
	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/utils"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth     *handler.AuthHandler
	Admin    *handler.AdminHandler
	Projects *handler.ProjectHandler
	Tokens   utils.TokenConfig
	Users    middleware.UserLoader
	Store    middleware.ProjectLoader
	Limiter  echo.MiddlewareFunc // nil disables rate limiting
}

// Register mounts every route. Unauthenticated auth operations live
// under /v1/auth; everything identity-bound goes through Authenticate,
// with role/permission/project guards composed per route.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	limited := []echo.MiddlewareFunc{}
	if d.Limiter != nil {
		limited = append(limited, d.Limiter)
	}

	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register, limited...)
	g.POST("/login", d.Auth.Login, limited...)
	g.POST("/refresh", d.Auth.Refresh)

	authed := middleware.Authenticate(d.Tokens, d.Users)
	g.POST("/logout", d.Auth.Logout, authed)
	g.POST("/change-password", d.Auth.ChangePassword, authed)

	e.GET("/v1/me", d.Auth.Me, authed)
	e.PUT("/v1/me/profile", d.Auth.UpdateProfile, authed)

	e.GET("/v1/projects/:id", d.Projects.GetProject,
		authed, middleware.RequireProjectAccess(d.Store))
	e.GET("/v1/projects/:id/preview", d.Projects.Preview,
		middleware.OptionalAuthenticate(d.Tokens, d.Users))

	e.PATCH("/v1/users/:id/status", d.Admin.UpdateUserStatus,
		authed,
		middleware.RequireRole(model.RoleAdmin),
		middleware.RequirePermission(auth.PermManageUsers))
}
