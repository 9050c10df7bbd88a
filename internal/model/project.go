package model

import "time"

// Project mirrors the `projects` table plus its `project_members` rows.
//
// ClientID references the users table directly: the client who owns a
// project logs in as a user with the client role, so the project row
// stores that user's id. There is no separate client entity join here;
// this is a known modeling shortcut carried over deliberately.
type Project struct {
	ID               uint64
	Name             string
	Status           string
	ProjectManagerID uint64
	ClientID         uint64 // 0 when the project has no client attached
	TeamMemberIDs    []uint64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
