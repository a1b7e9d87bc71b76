package postgres

import (
	"context"
	"database/sql"
	"time"

	"filehub/internal/model"
	"filehub/internal/repository"
)

// ProjectPostgres is a PostgreSQL implementation of repository.ProjectRepository.
// The aggregate spans three tables: projects, project_members, project_approvers.
// Create and Save rewrite the membership tables inside one transaction so a
// batch of role changes lands atomically or not at all.
type ProjectPostgres struct {
	db *sql.DB
}

// NewProjectPostgres creates a new ProjectPostgres repository.
func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

// Create inserts the project row and its membership sets.
// created_at is stamped here, exactly once.
func (r *ProjectPostgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO projects (id, name, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, creator_id, created_at
	`
	var out model.Project
	row := tx.QueryRowContext(ctx, q, p.ID, p.Name, p.CreatorID, time.Now().UTC())
	if err := row.Scan(&out.ID, &out.Name, &out.CreatorID, &out.CreatedAt); err != nil {
		return nil, err
	}

	if err := replaceMembership(ctx, tx, p.ID, p.MemberIDs, p.ApproverIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out.MemberIDs = append([]string(nil), p.MemberIDs...)
	out.ApproverIDs = append([]string(nil), p.ApproverIDs...)
	return &out, nil
}

// Save replaces name, creator, and both membership sets. created_at is untouched.
func (r *ProjectPostgres) Save(ctx context.Context, p *model.Project) (*model.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		UPDATE projects
		SET name = $2, creator_id = $3
		WHERE id = $1
		RETURNING id, name, creator_id, created_at
	`
	var out model.Project
	row := tx.QueryRowContext(ctx, q, p.ID, p.Name, p.CreatorID)
	if err := row.Scan(&out.ID, &out.Name, &out.CreatorID, &out.CreatedAt); err != nil {
		return nil, err
	}

	if err := replaceMembership(ctx, tx, p.ID, p.MemberIDs, p.ApproverIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out.MemberIDs = append([]string(nil), p.MemberIDs...)
	out.ApproverIDs = append([]string(nil), p.ApproverIDs...)
	return &out, nil
}

func replaceMembership(ctx context.Context, tx *sql.Tx, projectID string, memberIDs, approverIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_approvers WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	for _, uid := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			projectID, uid); err != nil {
			return err
		}
	}
	for _, uid := range approverIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_approvers (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			projectID, uid); err != nil {
			return err
		}
	}
	return nil
}

// FindByID fetches a project with both membership sets loaded.
func (r *ProjectPostgres) FindByID(ctx context.Context, id string) (*model.Project, error) {
	const q = `SELECT id, name, creator_id, created_at FROM projects WHERE id = $1`
	var p model.Project
	row := r.db.QueryRowContext(ctx, q, id)
	if err := row.Scan(&p.ID, &p.Name, &p.CreatorID, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.MemberIDs, err = r.memberIDs(ctx, `project_members`, id); err != nil {
		return nil, err
	}
	if p.ApproverIDs, err = r.memberIDs(ctx, `project_approvers`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectPostgres) memberIDs(ctx context.Context, table, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM `+table+` WHERE project_id = $1 ORDER BY user_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindAll returns all projects with their membership sets.
func (r *ProjectPostgres) FindAll(ctx context.Context) ([]model.Project, error) {
	const q = `SELECT id, name, creator_id, created_at FROM projects ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatorID, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].MemberIDs, err = r.memberIDs(ctx, `project_members`, items[i].ID); err != nil {
			return nil, err
		}
		if items[i].ApproverIDs, err = r.memberIDs(ctx, `project_approvers`, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ExistsByID reports whether a project row exists.
func (r *ProjectPostgres) ExistsByID(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsByName reports whether any project already uses the given name.
func (r *ProjectPostgres) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes the project row and its membership sets in one transaction.
func (r *ProjectPostgres) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_approvers WHERE project_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
