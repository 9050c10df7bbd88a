package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/middleware"
	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/queue"
)

// AdminHandler exposes admin-only user management. Route registration
// guards it with RequireRole(admin) and RequirePermission(manage_users).
type AdminHandler struct {
	Svc *auth.Service
}

func NewAdminHandler(svc *auth.Service) *AdminHandler { return &AdminHandler{Svc: svc} }

type statusReq struct {
	Status string `json:"status"`
}

// UpdateUserStatus sets a user's account status. Deactivation and
// suspension wipe the target's sessions, so revocation is immediate
// rather than waiting out token expiry.
func (h *AdminHandler) UpdateUserStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, auth.New(auth.KindValidation, auth.CodeInvalidInput, "invalid user id"))
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "invalid body"})
	}
	if err := h.Svc.SetUserStatus(c.Request().Context(), id, model.Status(req.Status)); err != nil {
		return writeError(c, err)
	}
	if actor, ok := middleware.CurrentUser(c); ok {
		publishAudit(queue.EventStatusChanged, actor, c.RealIP(),
			"user "+c.Param("id")+" -> "+req.Status)
	}
	return c.NoContent(http.StatusNoContent)
}
