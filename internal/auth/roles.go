package auth

import "github.com/iliyamo/studio-project-hub/internal/model"

// Permission names checked by exact membership. A permission is never
// inherited through the role hierarchy: each role's list below is the
// complete set it holds.
const (
	PermViewAll          = "view_all"
	PermManageSystem     = "manage_system"
	PermManageUsers      = "manage_users"
	PermManageProjects   = "manage_projects"
	PermManageClients    = "manage_clients"
	PermViewReports      = "view_reports"
	PermViewOwnProjects  = "view_own_projects"
	PermManageTasks      = "manage_tasks"
	PermManageDrawings   = "manage_drawings"
	PermUpdateTaskStatus = "update_task_status"
	PermCommentDrawings  = "comment_drawings"
)

// roleRanks orders the global hierarchy; higher outranks lower. A role
// missing from the table maps to 0, the lowest rank, and (having no
// permission list either) fails closed everywhere else.
var roleRanks = map[model.Role]int{
	model.RoleAdmin:          5,
	model.RoleProjectManager: 4,
	model.RoleDesigner:       3,
	model.RoleCoordinator:    2,
	model.RoleCraftsman:      1,
	model.RoleClient:         0,
}

var rolePermissions = map[model.Role]map[string]bool{
	model.RoleAdmin: perms(
		PermViewAll, PermManageSystem, PermManageUsers,
		PermManageProjects, PermManageClients, PermViewReports,
	),
	model.RoleProjectManager: perms(
		PermViewAll, PermManageProjects, PermManageTasks,
		PermManageClients, PermViewReports,
	),
	model.RoleDesigner: perms(
		PermViewOwnProjects, PermManageDrawings, PermUpdateTaskStatus,
	),
	model.RoleCoordinator: perms(
		PermViewOwnProjects, PermManageTasks, PermUpdateTaskStatus,
	),
	model.RoleCraftsman: perms(
		PermViewOwnProjects, PermUpdateTaskStatus,
	),
	model.RoleClient: perms(
		PermViewOwnProjects, PermCommentDrawings,
	),
}

func perms(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// RoleRank returns the numeric rank of a role, 0 for unknown roles.
func RoleRank(r model.Role) int { return roleRanks[r] }

// HasRole reports whether actual is at least as privileged as required.
// This is a hierarchy check, not equality: any role at or above the
// required rank passes.
func HasRole(actual, required model.Role) bool {
	return roleRanks[actual] >= roleRanks[required]
}

// HasPermission reports whether the role explicitly lists permission.
func HasPermission(r model.Role, permission string) bool {
	return rolePermissions[r][permission]
}

// KnownRole reports whether r is one of the six configured roles.
func KnownRole(r model.Role) bool {
	_, ok := roleRanks[r]
	return ok
}
