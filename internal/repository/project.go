package repository

import (
	"context"

	"filehub/internal/model"
)

// ProjectRepository defines data access for projects. A project is persisted
// as one aggregate: the row plus its member and approver sets. Save must
// rewrite the whole aggregate inside a single transaction so that role
// changes (including batch approver grants) land atomically or not at all.
type ProjectRepository interface {
	// Create inserts the project row and its membership sets.
	// CreatedAt is stamped by the implementation, exactly once.
	Create(ctx context.Context, p *model.Project) (*model.Project, error)

	// Save replaces the project name, creator, and both membership sets.
	// CreatedAt is never modified after Create.
	Save(ctx context.Context, p *model.Project) (*model.Project, error)

	// FindByID returns a project with both sets loaded, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// FindAll returns all projects with their membership sets.
	FindAll(ctx context.Context) ([]model.Project, error)

	// ExistsByID reports whether a project row exists.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ExistsByName reports whether any project already uses the given name.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Delete removes the project row and its membership sets.
	// It returns nil even if the row did not exist.
	Delete(ctx context.Context, id string) error
}
