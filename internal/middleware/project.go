package middleware

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/model"
)

// ProjectLoader resolves the project fields the access decision needs.
type ProjectLoader interface {
	GetByID(ctx context.Context, id uint64) (model.Project, error)
}

// RequireProjectAccess resolves the :id route param to a project and
// applies the project-scoped access decision. Existence is checked
// first: a missing project is a 404 before any allow/deny, so "doesn't
// exist" and "not yours" stay distinguishable. The decision runs fresh
// against current team/manager/client fields on every request.
//
// On success the resolved project is attached to the context under
// ContextProjectKey so handlers do not re-fetch it.
func RequireProjectAccess(projects ProjectLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return respondError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return respondError(c, auth.New(auth.KindValidation, auth.CodeInvalidInput, "invalid project id"))
			}
			p, err := projects.GetByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return respondError(c, auth.New(auth.KindNotFound, auth.CodeProjectNotFound, "project not found"))
				}
				return respondError(c, auth.Wrap(err, auth.KindDatabase, auth.CodeDatabase, "storage failure"))
			}
			if err := auth.CanAccessProject(u, p); err != nil {
				var ae *auth.Error
				if errors.As(err, &ae) {
					return respondError(c, ae)
				}
				return respondError(c, auth.Wrap(err, auth.KindDatabase, auth.CodeDatabase, "storage failure"))
			}
			c.Set(ContextProjectKey, p)
			return next(c)
		}
	}
}
