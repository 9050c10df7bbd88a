package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

// ProjectRepo reads the project fields the access decision needs:
// manager, client and current team membership. Membership is read fresh
// on every call; nothing here is cached.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

// GetByID fetches a project with its team member ids, or sql.ErrNoRows.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	var (
		p        model.Project
		clientID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, status, project_manager_id, client_id, created_at, updated_at FROM projects WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Status, &p.ProjectManagerID, &clientID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, err
	}
	if clientID.Valid {
		p.ClientID = uint64(clientID.Int64)
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id FROM project_members WHERE project_id=?", id)
	if err != nil {
		return model.Project{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var uid uint64
		if err := rows.Scan(&uid); err != nil {
			return model.Project{}, err
		}
		p.TeamMemberIDs = append(p.TeamMemberIDs, uid)
	}
	if err := rows.Err(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}
