package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

func userRows(t *testing.T, now time.Time) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"role", "status", "email_verified", "last_login_at",
		"position", "department", "phone", "avatar_url",
		"skills", "certifications", "created_at", "updated_at",
	}).AddRow(
		7, "alice@example.com", "$2a$12$hash", "Alice", "Archer",
		"designer", "active", true, now,
		"Senior Designer", "Interiors", nil, nil,
		[]byte(`["sketching","cad"]`), []byte(`null`), now, now,
	)
}

func TestUserRepoCreate(t *testing.T) {
	t.Run("success normalizes email", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepo(db)

		mock.ExpectExec("INSERT INTO users").
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := repo.Create(context.Background(), model.User{
			Email:        "  Alice@Example.COM ",
			PasswordHash: "$2a$12$hash",
			Role:         model.RoleDesigner,
			Status:       model.StatusActive,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to sentinel", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepo(db)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("Error 1062: Duplicate entry 'alice@example.com' for key 'users.email'"))

		_, err := repo.Create(context.Background(), model.User{Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestUserRepoGetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM users WHERE email=").
		WithArgs("alice@example.com").
		WillReturnRows(userRows(t, now))

	u, err := repo.GetByEmail(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, model.RoleDesigner, u.Role)
	assert.Equal(t, model.StatusActive, u.Status)
	assert.True(t, u.EmailVerified)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, "Senior Designer", u.Position)
	assert.Empty(t, u.Phone)
	assert.Equal(t, []string{"sketching", "cad"}, u.Skills)
	assert.Nil(t, u.Certifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .* FROM users WHERE id=").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepoUpdates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE users SET last_login_at=").
		WithArgs(now, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateLastLogin(ctx, 7, now))

	mock.ExpectExec("UPDATE users SET password_hash=").
		WithArgs("$2a$12$newhash", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePasswordHash(ctx, 7, "$2a$12$newhash"))

	mock.ExpectExec("UPDATE users SET status=").
		WithArgs("suspended", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, 7, model.StatusSuspended))

	mock.ExpectExec("UPDATE users SET position=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateProfile(ctx, 7, model.Profile{
		Position: "Lead Designer",
		Skills:   []string{"sketching"},
	}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepoGetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepo(db)
	now := time.Now().UTC()

	t.Run("with team and client", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM projects WHERE id=").
			WithArgs(uint64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "status", "project_manager_id", "client_id", "created_at", "updated_at",
			}).AddRow(42, "Penthouse refit", "in_progress", 10, 30, now, now))
		mock.ExpectQuery("SELECT user_id FROM project_members").
			WithArgs(uint64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(11).AddRow(12))

		p, err := repo.GetByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), p.ProjectManagerID)
		assert.Equal(t, uint64(30), p.ClientID)
		assert.Equal(t, []uint64{11, 12}, p.TeamMemberIDs)
	})

	t.Run("null client id reads as zero", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM projects WHERE id=").
			WithArgs(uint64(43)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "status", "project_manager_id", "client_id", "created_at", "updated_at",
			}).AddRow(43, "Internal refresh", "draft", 10, nil, now, now))
		mock.ExpectQuery("SELECT user_id FROM project_members").
			WithArgs(uint64(43)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		p, err := repo.GetByID(context.Background(), 43)
		require.NoError(t, err)
		assert.Zero(t, p.ClientID)
		assert.Empty(t, p.TeamMemberIDs)
	})

	t.Run("missing project", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM projects WHERE id=").
			WithArgs(uint64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
