package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/repository"
	"github.com/iliyamo/studio-project-hub/internal/utils"
)

// UserStore is the slice of user persistence the auth core depends on.
// Implementations return sql.ErrNoRows for missing rows and
// repository.ErrEmailExists for duplicate emails.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error
	UpdateStatus(ctx context.Context, id uint64, status model.Status) error
	UpdateProfile(ctx context.Context, id uint64, p model.Profile) error
}

// SessionStore persists outstanding refresh tokens by hash.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) (uint64, error)
	FindByHash(ctx context.Context, tokenHash string) (model.Session, error)
	Touch(ctx context.Context, id uint64) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// Service implements the transport-independent auth operations: login,
// registration, refresh, logout and password change.
type Service struct {
	Users      UserStore
	Sessions   SessionStore
	Tokens     utils.TokenConfig
	BcryptCost int
}

func NewService(users UserStore, sessions SessionStore, tokens utils.TokenConfig, bcryptCost int) *Service {
	return &Service{Users: users, Sessions: sessions, Tokens: tokens, BcryptCost: bcryptCost}
}

// TokenPair bundles a freshly issued access/refresh pair.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// Result is what login and registration hand back to the route layer.
type Result struct {
	User   model.User
	Tokens TokenPair
}

// RegisterInput carries the fields accepted at registration. Role
// defaults to client when empty; admin accounts are never created
// through self-registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

// invalidCredentials is deliberately identical for a wrong password and
// an unknown email, so login never reveals whether an email exists.
func invalidCredentials() *Error {
	return New(KindAuthentication, CodeInvalidCredentials, "Invalid email or password")
}

func storage(err error) *Error {
	return Wrap(err, KindDatabase, CodeDatabase, "storage failure")
}

// Register creates the user, then logs them in: it returns the new
// record together with a token pair whose refresh half is already
// tracked as a session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Result, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return Result{}, New(KindValidation, CodeInvalidInput, "email and password are required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleClient
	}
	if !KnownRole(role) || role == model.RoleAdmin {
		return Result{}, New(KindValidation, CodeInvalidInput, "invalid role")
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return Result{}, storage(err)
	}
	u := model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		Status:       model.StatusActive,
	}
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Result{}, New(KindConflict, CodeEmailTaken, "email already registered")
		}
		return Result{}, storage(err)
	}
	u.ID = id

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return Result{}, err
	}
	return Result{User: u, Tokens: pair}, nil
}

// Login verifies credentials and the account's live status, stamps
// last_login_at and returns a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, invalidCredentials()
		}
		return Result{}, storage(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Result{}, invalidCredentials()
	}
	if !u.IsActive() {
		return Result{}, New(KindAuthentication, CodeAccountInactive, "account is not active")
	}

	now := time.Now().UTC()
	if err := s.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		log.Printf("auth: last_login update failed for user %d: %v", u.ID, err)
	}
	u.LastLoginAt = &now

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return Result{}, err
	}
	return Result{User: u, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is not rotated; its session row is touched so idle
// sessions can be audited. Every failure is an authentication error:
// the client must log in again, not retry.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (utils.SignedToken, error) {
	claims, err := utils.ParseRefreshToken(s.Tokens, rawRefresh)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return utils.SignedToken{}, New(KindAuthentication, CodeTokenExpired, "refresh token expired")
		}
		return utils.SignedToken{}, New(KindAuthentication, CodeInvalidToken, "invalid refresh token")
	}

	sess, err := s.Sessions.FindByHash(ctx, utils.HashRefreshRaw(rawRefresh))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.SignedToken{}, New(KindAuthentication, CodeSessionInvalid, "session not found")
		}
		return utils.SignedToken{}, storage(err)
	}
	if sess.UserID != claims.UserID {
		return utils.SignedToken{}, New(KindAuthentication, CodeSessionInvalid, "session not found")
	}
	if sess.Expired(time.Now().UTC()) {
		return utils.SignedToken{}, New(KindAuthentication, CodeSessionExpired, "session expired")
	}

	u, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.SignedToken{}, New(KindAuthentication, CodeUserNotFound, "user no longer exists")
		}
		return utils.SignedToken{}, storage(err)
	}
	if !u.IsActive() {
		return utils.SignedToken{}, New(KindAuthentication, CodeAccountInactive, "account is not active")
	}

	if err := s.Sessions.Touch(ctx, sess.ID); err != nil {
		log.Printf("auth: session touch failed for session %d: %v", sess.ID, err)
	}
	access, err := utils.NewAccessToken(s.Tokens, u)
	if err != nil {
		return utils.SignedToken{}, storage(err)
	}
	return access, nil
}

// Logout invalidates every outstanding refresh token for the user. It
// is idempotent and never fails the caller-visible flow: an internal
// deletion error is logged, not surfaced.
func (s *Service) Logout(ctx context.Context, userID uint64) {
	if err := s.Sessions.DeleteAllForUser(ctx, userID); err != nil {
		log.Printf("auth: logout session wipe failed for user %d: %v", userID, err)
	}
}

// ChangePassword verifies the current password, stores the new hash and
// wipes every session, forcing re-authentication on all devices.
func (s *Service) ChangePassword(ctx context.Context, userID uint64, current, newPassword string) error {
	if newPassword == "" {
		return New(KindValidation, CodeInvalidInput, "new password is required")
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(KindAuthentication, CodeUserNotFound, "user no longer exists")
		}
		return storage(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return New(KindAuthentication, CodeInvalidCredentials, "current password is incorrect")
	}
	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return storage(err)
	}
	if err := s.Users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return storage(err)
	}
	// The wipe is part of the contract: a compromised refresh token must
	// die network-wide, not just on the device changing the password.
	if err := s.Sessions.DeleteAllForUser(ctx, userID); err != nil {
		return storage(err)
	}
	return nil
}

// SetUserStatus applies an admin-driven status change. Leaving the
// active state force-logs the target out everywhere.
func (s *Service) SetUserStatus(ctx context.Context, userID uint64, status model.Status) error {
	switch status {
	case model.StatusActive, model.StatusInactive, model.StatusSuspended:
	default:
		return New(KindValidation, CodeInvalidInput, "invalid status")
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(KindNotFound, CodeUserNotFound, "user not found")
		}
		return storage(err)
	}
	if err := s.Users.UpdateStatus(ctx, userID, status); err != nil {
		return storage(err)
	}
	if status != model.StatusActive {
		if err := s.Sessions.DeleteAllForUser(ctx, userID); err != nil {
			return storage(err)
		}
	}
	return nil
}

// UpdateProfile stores the opaque profile fields for the user.
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, p model.Profile) error {
	if err := s.Users.UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(KindNotFound, CodeUserNotFound, "user not found")
		}
		return storage(err)
	}
	return nil
}

func (s *Service) issuePair(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.Tokens, u)
	if err != nil {
		return TokenPair{}, storage(err)
	}
	refresh, err := utils.NewRefreshToken(s.Tokens, u.ID)
	if err != nil {
		return TokenPair{}, storage(err)
	}
	if _, err := s.Sessions.Create(ctx, u.ID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return TokenPair{}, storage(err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
