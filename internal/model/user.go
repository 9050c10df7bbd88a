package model

import "time"

// Role is a user's global role. Roles form a strict hierarchy used for
// "at least this privileged" checks; the auth package holds the ranks
// and the per-role permission lists.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleDesigner       Role = "designer"
	RoleCoordinator    Role = "coordinator"
	RoleCraftsman      Role = "craftsman"
	RoleClient         Role = "client"
)

// Status is the lifecycle state of a user account. Anything other than
// StatusActive makes the account unusable for authentication, no matter
// how valid its tokens still are.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User mirrors the `users` table. Email is stored lowercased and is
// unique. PasswordHash holds the bcrypt hash; plaintext passwords never
// reach this layer. The profile fields (position through certifications)
// are opaque to the auth core and only pass through it.
type User struct {
	ID             uint64
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           Role
	Status         Status
	EmailVerified  bool
	LastLoginAt    *time.Time
	Position       string
	Department     string
	Phone          string
	AvatarURL      string
	Skills         []string
	Certifications []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool { return u.Status == StatusActive }

// Profile groups the mutable profile fields for update calls.
type Profile struct {
	Position       string
	Department     string
	Phone          string
	AvatarURL      string
	Skills         []string
	Certifications []string
}
