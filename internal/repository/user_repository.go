package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

// UserRepo persists user records in the `users` table. The skills and
// certifications lists are stored as JSON text columns; they are opaque
// to this layer beyond encode/decode.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password_hash, first_name, last_name, role, status, email_verified, last_login_at, position, department, phone, avatar_url, skills, certifications, created_at, updated_at"

// Create inserts a user and returns its id. The caller supplies the
// bcrypt hash; plaintext never reaches this layer.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	skills, err := json.Marshal(u.Skills)
	if err != nil {
		return 0, err
	}
	certs, err := json.Marshal(u.Certifications)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role, status, email_verified, position, department, phone, avatar_url, skills, certifications) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.FirstName, u.LastName,
		string(u.Role), string(u.Status), u.EmailVerified,
		u.Position, u.Department, u.Phone, u.AvatarURL, skills, certs)
	if err != nil {
		// MySQL 1062 = duplicate key, here only possible on the email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// UpdateLastLogin stamps last_login_at. Called at login and again on
// every authenticated request, so it deliberately touches nothing else.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=? WHERE id=?", at, id)
	return err
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateStatus applies an account status change.
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, status model.Status) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=? WHERE id=?", string(status), id)
	return err
}

// UpdateProfile stores the opaque profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p model.Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return err
	}
	certs, err := json.Marshal(p.Certifications)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET position=?, department=?, phone=?, avatar_url=?, skills=?, certifications=? WHERE id=?",
		p.Position, p.Department, p.Phone, p.AvatarURL, skills, certs, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u                    model.User
		role, status         string
		lastLogin            sql.NullTime
		position, department sql.NullString
		phone, avatarURL     sql.NullString
		skillsRaw, certsRaw  []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &status, &u.EmailVerified, &lastLogin,
		&position, &department, &phone, &avatarURL,
		&skillsRaw, &certsRaw, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.Status = model.Status(status)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	u.Position = position.String
	u.Department = department.String
	u.Phone = phone.String
	u.AvatarURL = avatarURL.String
	if len(skillsRaw) > 0 {
		_ = json.Unmarshal(skillsRaw, &u.Skills)
	}
	if len(certsRaw) > 0 {
		_ = json.Unmarshal(certsRaw, &u.Certifications)
	}
	return u, nil
}
