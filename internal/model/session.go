package model

import "time"

// Session mirrors the `sessions` table: one row per outstanding refresh
// token. Only the SHA-256 hash of the raw token is stored, so a stolen
// database dump cannot be replayed against the refresh endpoint.
type Session struct {
	ID         uint64
	UserID     uint64
	TokenHash  string
	ExpiresAt  time.Time
	LastUsedAt time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session is past its absolute expiry. Rows
// are not reaped eagerly, so callers must check this on every lookup.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
