// Package queue defines the payloads published to the audit sink and
// the background consumer draining them.
package queue

// Event names carried by AuthAuditEvent.
const (
	EventUserRegistered  = "user.registered"
	EventUserLoggedIn    = "user.logged_in"
	EventUserLoggedOut   = "user.logged_out"
	EventPasswordChanged = "user.password_changed"
	EventStatusChanged   = "user.status_changed"
)

// AuthAuditEvent is published after auth-lifecycle operations. It is a
// fire-and-forget record: publishing failures never fail the request
// that produced the event.
type AuthAuditEvent struct {
	Event      string `json:"event"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	IP         string `json:"ip,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
