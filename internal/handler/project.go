package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/middleware"
	"github.com/iliyamo/studio-project-hub/internal/model"
)

// ProjectHandler serves project reads. Full business endpoints live in
// their own services; these two exist for the guard composition: one
// behind the project-access middleware, one on the optional-auth path.
type ProjectHandler struct {
	Projects middleware.ProjectLoader
}

func NewProjectHandler(projects middleware.ProjectLoader) *ProjectHandler {
	return &ProjectHandler{Projects: projects}
}

type projectResp struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	ProjectManagerID uint64    `json:"project_manager_id"`
	ClientID         uint64    `json:"client_id,omitempty"`
	TeamMemberIDs    []uint64  `json:"team_member_ids"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toProjectResp(p model.Project) projectResp {
	return projectResp{
		ID:               p.ID,
		Name:             p.Name,
		Status:           p.Status,
		ProjectManagerID: p.ProjectManagerID,
		ClientID:         p.ClientID,
		TeamMemberIDs:    p.TeamMemberIDs,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// GetProject returns the project resolved by RequireProjectAccess.
func (h *ProjectHandler) GetProject(c echo.Context) error {
	p, ok := middleware.CurrentProject(c)
	if !ok {
		return writeError(c, auth.New(auth.KindDatabase, auth.CodeDatabase, "project not resolved"))
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}

// Preview serves a project teaser on the optional-auth path: anonymous
// callers (and authenticated users without access) get name and status
// only, while a caller the access engine allows gets the full record.
func (h *ProjectHandler) Preview(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, auth.New(auth.KindValidation, auth.CodeInvalidInput, "invalid project id"))
	}
	p, err := h.Projects.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return writeError(c, auth.New(auth.KindNotFound, auth.CodeProjectNotFound, "project not found"))
		}
		return writeError(c, err)
	}
	if u, ok := middleware.CurrentUser(c); ok {
		if auth.CanAccessProject(u, p) == nil {
			return c.JSON(http.StatusOK, toProjectResp(p))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     p.ID,
		"name":   p.Name,
		"status": p.Status,
	})
}
