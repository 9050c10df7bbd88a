package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/utils"
)

// Context keys populated by Authenticate and read by downstream
// middleware and handlers.
const (
	ContextUserKey    = "user"    // model.User
	ContextUserIDKey  = "user_id" // uint64
	ContextRoleKey    = "role"    // model.Role
	ContextProjectKey = "project" // model.Project, set by RequireProjectAccess
)

// UserLoader is the user lookup the authentication pipeline needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// Authenticate validates the bearer access token, re-reads the user's
// live record from storage and attaches the identity to the request
// context. The storage re-read is the revocation check: a valid token
// is not enough, a deactivated account must lose access immediately
// rather than when its token expires.
func Authenticate(cfg utils.TokenConfig, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, appErr := resolveIdentity(c, cfg, users)
			if appErr != nil {
				return respondError(c, appErr)
			}
			attachIdentity(c, u)
			touchActivity(c, users, u.ID)
			return next(c)
		}
	}
}

// OptionalAuthenticate runs the same pipeline but treats every failure
// as an anonymous request instead of rejecting it. Used by endpoints
// that personalize without requiring login.
func OptionalAuthenticate(cfg utils.TokenConfig, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if u, appErr := resolveIdentity(c, cfg, users); appErr == nil {
				attachIdentity(c, u)
				touchActivity(c, users, u.ID)
			}
			return next(c)
		}
	}
}

func resolveIdentity(c echo.Context, cfg utils.TokenConfig, users UserLoader) (model.User, *auth.Error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return model.User{}, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "missing bearer token")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return model.User{}, auth.New(auth.KindAuthentication, auth.CodeInvalidToken, "malformed authorization header")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims, err := utils.ParseAccessToken(cfg, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return model.User{}, auth.New(auth.KindAuthentication, auth.CodeTokenExpired, "access token expired")
		}
		return model.User{}, auth.New(auth.KindAuthentication, auth.CodeInvalidToken, "invalid access token")
	}

	u, err := users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, auth.New(auth.KindAuthentication, auth.CodeUserNotFound, "user no longer exists")
		}
		return model.User{}, auth.Wrap(err, auth.KindDatabase, auth.CodeDatabase, "storage failure")
	}
	if !u.IsActive() {
		return model.User{}, auth.New(auth.KindAuthentication, auth.CodeAccountInactive, "account is not active")
	}
	return u, nil
}

func attachIdentity(c echo.Context, u model.User) {
	c.Set(ContextUserKey, u)
	c.Set(ContextUserIDKey, u.ID)
	c.Set(ContextRoleKey, u.Role)
}

// touchActivity stamps last_login_at on every authenticated request,
// not only at login; the field doubles as an activity timestamp.
// Best-effort: a failed stamp never fails the request.
func touchActivity(c echo.Context, users UserLoader, userID uint64) {
	if err := users.UpdateLastLogin(c.Request().Context(), userID, time.Now().UTC()); err != nil {
		c.Logger().Warnf("last_login touch failed for user %d: %v", userID, err)
	}
}

// respondError renders a structured auth error as JSON.
func respondError(c echo.Context, err *auth.Error) error {
	return c.JSON(err.HTTPStatus(), echo.Map{"error": err.Code, "message": err.Message})
}
