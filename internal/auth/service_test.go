package auth

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/studio-project-hub/internal/model"
	"github.com/iliyamo/studio-project-hub/internal/repository"
	"github.com/iliyamo/studio-project-hub/internal/utils"
)

// ----- in-memory stores -----

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u model.User) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.byID[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.LastLoginAt = &at
		m.byID[id] = u
	}
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, id uint64, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Status = status
	m.byID[id] = u
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uint64, p model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Position, u.Department, u.Phone, u.AvatarURL = p.Position, p.Department, p.Phone, p.AvatarURL
	u.Skills, u.Certifications = p.Skills, p.Certifications
	m.byID[id] = u
	return nil
}

type memSessions struct {
	mu     sync.Mutex
	nextID uint64
	byHash map[string]model.Session
}

func newMemSessions() *memSessions { return &memSessions{byHash: map[string]model.Session{}} }

func (m *memSessions) Create(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	m.byHash[tokenHash] = model.Session{
		ID: m.nextID, UserID: userID, TokenHash: tokenHash,
		ExpiresAt: expiresAt, LastUsedAt: now, CreatedAt: now,
	}
	return m.nextID, nil
}

func (m *memSessions) FindByHash(_ context.Context, tokenHash string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byHash[tokenHash]
	if !ok {
		return model.Session{}, sql.ErrNoRows
	}
	return s, nil
}

func (m *memSessions) Touch(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.byHash {
		if s.ID == id {
			s.LastUsedAt = time.Now().UTC()
			m.byHash[hash] = s
		}
	}
	return nil
}

func (m *memSessions) DeleteAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.byHash {
		if s.UserID == userID {
			delete(m.byHash, hash)
		}
	}
	return nil
}

func (m *memSessions) count(userID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.byHash {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

func testTokens() utils.TokenConfig {
	return utils.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "studio-project-hub",
		Audience:      "studio-project-app",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

func newTestService() (*Service, *memUsers, *memSessions) {
	users := newMemUsers()
	sessions := newMemSessions()
	// Low bcrypt cost keeps these tests fast; production uses cost 12.
	return NewService(users, sessions, testTokens(), 4), users, sessions
}

func requireKind(t *testing.T, err error, kind Kind, code string) {
	t.Helper()
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, kind, ae.Kind)
	assert.Equal(t, code, ae.Code)
}

// ----- tests -----

func TestRegister(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email: "  Alice@Example.com ", Password: "Str0ng!Pass",
		FirstName: "Alice", LastName: "Archer", Role: model.RoleDesigner,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, model.RoleDesigner, res.User.Role)
	assert.Equal(t, model.StatusActive, res.User.Status)
	assert.NotEmpty(t, res.Tokens.Access.Token)
	assert.NotEmpty(t, res.Tokens.Refresh.Token)
	assert.Equal(t, 1, sessions.count(res.User.ID))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "other"})
		requireKind(t, err, KindConflict, CodeEmailTaken)
	})

	t.Run("empty role defaults to client", func(t *testing.T) {
		res, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "pw12345"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleClient, res.User.Role)
	})

	t.Run("admin self-registration rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "eve@example.com", Password: "pw", Role: model.RoleAdmin})
		requireKind(t, err, KindValidation, CodeInvalidInput)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "eve@example.com", Password: "pw", Role: "intern"})
		requireKind(t, err, KindValidation, CodeInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Str0ng!Pass", Role: model.RoleDesigner})
	require.NoError(t, err)

	t.Run("success stamps last login", func(t *testing.T) {
		res, err := svc.Login(ctx, "ALICE@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Tokens.Access.Token)
		stored, err := users.GetByID(ctx, res.User.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLoginAt)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, err1 := svc.Login(ctx, "alice@example.com", "wrong")
		_, err2 := svc.Login(ctx, "nobody@example.com", "whatever")
		requireKind(t, err1, KindAuthentication, CodeInvalidCredentials)
		requireKind(t, err2, KindAuthentication, CodeInvalidCredentials)
		assert.Equal(t, err1.Error(), err2.Error())
	})

	t.Run("inactive account rejected despite good password", func(t *testing.T) {
		u, err := users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NoError(t, users.UpdateStatus(ctx, u.ID, model.StatusSuspended))
		_, err = svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
		requireKind(t, err, KindAuthentication, CodeAccountInactive)
		require.NoError(t, users.UpdateStatus(ctx, u.ID, model.StatusActive))
	})
}

func TestRefresh(t *testing.T) {
	svc, users, sessions := newTestService()
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Str0ng!Pass", Role: model.RoleCoordinator})
	require.NoError(t, err)
	refresh := res.Tokens.Refresh.Token

	t.Run("valid refresh yields access token", func(t *testing.T) {
		access, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		claims, err := utils.ParseAccessToken(svc.Tokens, access.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.UserID)
		assert.Equal(t, model.RoleCoordinator, claims.Role)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, res.Tokens.Access.Token)
		requireKind(t, err, KindAuthentication, CodeInvalidToken)
	})

	t.Run("expired session row rejected", func(t *testing.T) {
		hash := utils.HashRefreshRaw(refresh)
		sessions.mu.Lock()
		s := sessions.byHash[hash]
		s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		sessions.byHash[hash] = s
		sessions.mu.Unlock()
		_, err := svc.Refresh(ctx, refresh)
		requireKind(t, err, KindAuthentication, CodeSessionExpired)
		sessions.mu.Lock()
		s.ExpiresAt = time.Now().UTC().Add(time.Hour)
		sessions.byHash[hash] = s
		sessions.mu.Unlock()
	})

	t.Run("inactive user cannot refresh", func(t *testing.T) {
		require.NoError(t, users.UpdateStatus(ctx, res.User.ID, model.StatusInactive))
		_, err := svc.Refresh(ctx, refresh)
		requireKind(t, err, KindAuthentication, CodeAccountInactive)
		require.NoError(t, users.UpdateStatus(ctx, res.User.ID, model.StatusActive))
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-jwt")
		requireKind(t, err, KindAuthentication, CodeInvalidToken)
	})
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	require.Equal(t, 1, sessions.count(res.User.ID))

	svc.Logout(ctx, res.User.ID)
	assert.Equal(t, 0, sessions.count(res.User.ID))
	svc.Logout(ctx, res.User.ID) // second call is a no-op, not an error
	assert.Equal(t, 0, sessions.count(res.User.ID))
}

func TestChangePassword(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	refresh := res.Tokens.Refresh.Token

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, res.User.ID, "wrong", "NewPass123")
		requireKind(t, err, KindAuthentication, CodeInvalidCredentials)
	})

	t.Run("success wipes every session", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, res.User.ID, "Str0ng!Pass", "NewPass123"))
		assert.Equal(t, 0, sessions.count(res.User.ID))

		_, err := svc.Refresh(ctx, refresh)
		requireKind(t, err, KindAuthentication, CodeSessionInvalid)

		_, err = svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
		requireKind(t, err, KindAuthentication, CodeInvalidCredentials)
		_, err = svc.Login(ctx, "alice@example.com", "NewPass123")
		assert.NoError(t, err)
	})
}

func TestSetUserStatus(t *testing.T) {
	svc, users, sessions := newTestService()
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	t.Run("deactivation force-logs-out", func(t *testing.T) {
		require.NoError(t, svc.SetUserStatus(ctx, res.User.ID, model.StatusInactive))
		u, err := users.GetByID(ctx, res.User.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInactive, u.Status)
		assert.Equal(t, 0, sessions.count(res.User.ID))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		err := svc.SetUserStatus(ctx, 9999, model.StatusActive)
		requireKind(t, err, KindNotFound, CodeUserNotFound)
	})

	t.Run("bogus status rejected", func(t *testing.T) {
		err := svc.SetUserStatus(ctx, res.User.ID, model.Status("frozen"))
		requireKind(t, err, KindValidation, CodeInvalidInput)
	})
}

// TestEndToEnd walks the full lifecycle: register, login, refresh,
// logout, refresh again.
func TestEndToEnd(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Email: "alice@example.com", Password: "Str0ng!Pass",
		FirstName: "Alice", LastName: "Archer", Role: model.RoleDesigner,
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	require.NotEmpty(t, login.Tokens.Access.Token)
	require.NotEmpty(t, login.Tokens.Refresh.Token)
	assert.NotEqual(t, reg.Tokens.Refresh.Token, login.Tokens.Refresh.Token,
		"each login tracks its own session")

	// Token timestamps have second precision; step past them so the
	// refreshed access token is observably different.
	time.Sleep(1100 * time.Millisecond)

	access, err := svc.Refresh(ctx, login.Tokens.Refresh.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Token)
	assert.NotEqual(t, login.Tokens.Access.Token, access.Token)

	svc.Logout(ctx, login.User.ID)
	_, err = svc.Refresh(ctx, login.Tokens.Refresh.Token)
	requireKind(t, err, KindAuthentication, CodeSessionInvalid)
}
