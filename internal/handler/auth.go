package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/middleware"
	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/queue"
	audit "github.com/iliyamo/studio-project-hub/internal/service"
)

// AuthHandler exposes the auth service over HTTP.
type AuthHandler struct {
	Svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler { return &AuthHandler{Svc: svc} }

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
type profileReq struct {
	Position       string   `json:"position"`
	Department     string   `json:"department"`
	Phone          string   `json:"phone"`
	AvatarURL      string   `json:"avatar_url"`
	Skills         []string `json:"skills"`
	Certifications []string `json:"certifications"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		Status:    string(u.Status),
	}
}

func toAuthResp(r auth.Result) authResp {
	return authResp{
		User:    toUserPart(r.User),
		Access:  tokenPart{Token: r.Tokens.Access.Token, Expires: r.Tokens.Access.Exp},
		Refresh: tokenPart{Token: r.Tokens.Refresh.Token, Expires: r.Tokens.Refresh.Exp},
	}
}

// publishAudit fires an audit event without blocking or failing the
// request that produced it.
func publishAudit(event string, u model.User, ip, detail string) {
	go func() {
		_ = audit.Publish(context.Background(), queue.AuthAuditEvent{
			Event:  event,
			UserID: u.ID,
			Email:  u.Email,
			Role:   string(u.Role),
			IP:     ip,
			Detail: detail,
		})
	}()
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "invalid body"})
	}
	res, err := h.Svc.Register(c.Request().Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.Role(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		return writeError(c, err)
	}
	publishAudit(queue.EventUserRegistered, res.User, c.RealIP(), "")
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "invalid body"})
	}
	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	publishAudit(queue.EventUserLoggedIn, res.User, c.RealIP(), "")
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "refresh_token required"})
	}
	access, err := h.Svc.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes every session of the authenticated user. Idempotent:
// a second call with no sessions left still returns 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return writeError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
	}
	h.Svc.Logout(c.Request().Context(), u.ID)
	publishAudit(queue.EventUserLoggedOut, u, c.RealIP(), "")
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword swaps the credential and wipes all sessions, so every
// outstanding refresh token dies with the old password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return writeError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "invalid body"})
	}
	if err := h.Svc.ChangePassword(c.Request().Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	publishAudit(queue.EventPasswordChanged, u, c.RealIP(), "")
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity attached by the middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return writeError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateProfile stores the caller's profile fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return writeError(c, auth.New(auth.KindAuthentication, auth.CodeMissingToken, "authentication required"))
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.CodeInvalidInput, "message": "invalid body"})
	}
	err := h.Svc.UpdateProfile(c.Request().Context(), u.ID, model.Profile{
		Position:       req.Position,
		Department:     req.Department,
		Phone:          req.Phone,
		AvatarURL:      req.AvatarURL,
		Skills:         req.Skills,
		Certifications: req.Certifications,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
