package auth

import "github.com/iliyamo/studio-project-hub/internal/model"

// CanAccessProject decides whether u may touch project p. It returns
// nil on allow and a PROJECT_ACCESS_DENIED authorization error on deny.
//
// The decision is recomputed from the project's current manager, team
// and client fields on every call and must never be cached, so a team
// change takes effect on the very next request. Callers are expected to
// resolve the project's existence first; a missing project is a 404,
// not a denial.
func CanAccessProject(u model.User, p model.Project) error {
	if u.Role == model.RoleAdmin {
		return nil
	}
	if u.ID == p.ProjectManagerID {
		return nil
	}
	for _, id := range p.TeamMemberIDs {
		if id == u.ID {
			return nil
		}
	}
	// Client ownership compares the project's client column against the
	// user id directly; see model.Project for the modeling shortcut.
	if u.Role == model.RoleClient && p.ClientID != 0 && u.ID == p.ClientID {
		return nil
	}
	return New(KindAuthorization, CodeProjectAccessDenied, "you do not have access to this project")
}
