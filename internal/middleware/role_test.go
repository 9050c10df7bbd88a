package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/model"
)

// invokeAs runs mw with an identity already attached, the way
// Authenticate would leave the context.
func invokeAs(t *testing.T, mw echo.MiddlewareFunc, u *model.User) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if u != nil {
		attachIdentity(c, *u)
	}

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     model.Role
		required model.Role
		allowed  bool
	}{
		{"exact role passes", model.RoleProjectManager, model.RoleProjectManager, true},
		{"higher rank passes", model.RoleAdmin, model.RoleDesigner, true},
		{"lower rank denied", model.RoleCraftsman, model.RoleCoordinator, false},
		{"client denied everything above client", model.RoleClient, model.RoleCraftsman, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := model.User{ID: 1, Role: tc.role, Status: model.StatusActive}
			rec, called := invokeAs(t, RequireRole(tc.required), &u)
			assert.Equal(t, tc.allowed, called)
			if !tc.allowed {
				assert.Equal(t, http.StatusForbidden, rec.Code)
				assert.Equal(t, auth.CodeRoleRequired, errorCode(t, rec))
			}
		})
	}

	t.Run("anonymous gets 401 not 403", func(t *testing.T) {
		rec, called := invokeAs(t, RequireRole(model.RoleClient), nil)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	t.Run("held permission passes", func(t *testing.T) {
		u := model.User{ID: 1, Role: model.RoleAdmin, Status: model.StatusActive}
		_, called := invokeAs(t, RequirePermission(auth.PermManageUsers), &u)
		assert.True(t, called)
	})

	t.Run("rank does not substitute for the permission", func(t *testing.T) {
		// Project managers outrank designers but do not hold
		// manage_drawings; permission checks are exact membership.
		u := model.User{ID: 1, Role: model.RoleProjectManager, Status: model.StatusActive}
		rec, called := invokeAs(t, RequirePermission(auth.PermManageDrawings), &u)
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, auth.CodePermissionRequired, errorCode(t, rec))
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec, called := invokeAs(t, RequirePermission(auth.PermViewAll), nil)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
