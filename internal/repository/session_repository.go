package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

// SessionRepo persists refresh-token sessions in the `sessions` table.
// Only SHA-256 hashes of refresh tokens are stored; lookups are always
// by hash, never by raw value.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts one session row per login/registration and returns its
// id. last_used_at and created_at default to the insert time in schema.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByHash returns the session row for a token hash, or sql.ErrNoRows.
// Expiry is not filtered here: callers check it explicitly so they can
// report "expired" distinctly from "unknown".
func (r *SessionRepo) FindByHash(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, last_used_at, created_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.LastUsedAt, &s.CreatedAt)
	return s, err
}

// Touch updates last_used_at to now; called on every successful refresh
// to support idle-session auditing.
func (r *SessionRepo) Touch(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET last_used_at=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// DeleteAllForUser removes every outstanding session for a user. Used
// by logout, password change and admin force-logout; deleting zero rows
// is not an error, which keeps logout idempotent.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
