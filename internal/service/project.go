package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"filehub/internal/apperr"
	"filehub/internal/model"
	"filehub/internal/repository"
)

// ProjectService owns project CRUD and membership/approver role management.
// Role mutations go through the project's single SetRole path, and every
// operation persists the whole aggregate in one repository transaction, so a
// failed batch leaves nothing half-applied.
type ProjectService interface {
	// Create builds a new project. The creator must exist; member and
	// approver ID lists are resolved against the identity store and
	// unresolvable IDs are silently dropped. The two lists may overlap here;
	// exclusivity is only enforced by later role toggles.
	Create(ctx context.Context, name, creatorID string, memberIDs, approverIDs []string) (*model.Project, error)

	// Update wholesale-replaces name, creator, and both membership sets.
	Update(ctx context.Context, id, name, creatorID string, memberIDs, approverIDs []string) (*model.Project, error)

	// AddMember puts the user in the member set and out of the approver set.
	AddMember(ctx context.Context, projectID, userID string) (*model.Project, error)

	// RemoveMember takes the user out of the member set only.
	RemoveMember(ctx context.Context, projectID, userID string) (*model.Project, error)

	// AddApprovers grants the approver role to every listed user, removing
	// each from the member set. Every user must exist; a missing one fails
	// the whole batch with no partial effect.
	AddApprovers(ctx context.Context, projectID string, userIDs []string) (*model.Project, error)

	// RemoveApprover takes the user out of the approver set only.
	RemoveApprover(ctx context.Context, projectID, userID string) (*model.Project, error)

	// Delete removes a project. It is rejected while documents still
	// reference the project.
	Delete(ctx context.Context, id string) error

	// List returns all projects.
	List(ctx context.Context) ([]model.Project, error)

	// Get returns a single project by its ID.
	Get(ctx context.Context, id string) (*model.Project, error)
}

type projectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	docs     repository.DocumentRepository
}

// NewProjectService constructs a new ProjectService.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, docs repository.DocumentRepository) ProjectService {
	return &projectService{projects: projects, users: users, docs: docs}
}

// resolveIDs maps the given IDs to those that exist, dropping misses.
func (s *projectService) resolveIDs(ctx context.Context, ids []string) ([]string, error) {
	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(found))
	for _, u := range found {
		out = append(out, u.ID)
	}
	return out, nil
}

func (s *projectService) Create(ctx context.Context, name, creatorID string, memberIDs, approverIDs []string) (*model.Project, error) {
	exists, err := s.users.ExistsByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("creator", creatorID)
	}

	taken, err := s.projects.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(fmt.Sprintf("project name already in use: %s", name))
	}

	members, err := s.resolveIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	approvers, err := s.resolveIDs(ctx, approverIDs)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		ID:          uuid.New().String(),
		Name:        name,
		CreatorID:   creatorID,
		MemberIDs:   members,
		ApproverIDs: approvers,
	}
	return s.projects.Create(ctx, p)
}

func (s *projectService) Update(ctx context.Context, id, name, creatorID string, memberIDs, approverIDs []string) (*model.Project, error) {
	p, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("creator", creatorID)
	}

	members, err := s.resolveIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	approvers, err := s.resolveIDs(ctx, approverIDs)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.CreatorID = creatorID
	p.MemberIDs = members
	p.ApproverIDs = approvers
	return s.projects.Save(ctx, p)
}

func (s *projectService) findProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("project", id)
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("user", userID)
	}
	return nil
}

func (s *projectService) AddMember(ctx context.Context, projectID, userID string) (*model.Project, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	p.SetRole(userID, model.RoleMember)
	return s.projects.Save(ctx, p)
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, userID string) (*model.Project, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	p.RevokeMember(userID)
	return s.projects.Save(ctx, p)
}

func (s *projectService) AddApprovers(ctx context.Context, projectID string, userIDs []string) (*model.Project, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	// All role changes are staged on the in-memory aggregate before the
	// single Save, so a missing user mid-batch leaves the stored project
	// untouched.
	for _, uid := range userIDs {
		if err := s.requireUser(ctx, uid); err != nil {
			return nil, err
		}
		p.SetRole(uid, model.RoleApprover)
	}
	return s.projects.Save(ctx, p)
}

func (s *projectService) RemoveApprover(ctx context.Context, projectID, userID string) (*model.Project, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	p.RevokeApprover(userID)
	return s.projects.Save(ctx, p)
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	exists, err := s.projects.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("project", id)
	}

	n, err := s.docs.CountByProjectID(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("project has %d documents and cannot be deleted", n))
	}
	return s.projects.Delete(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]model.Project, error) {
	return s.projects.FindAll(ctx)
}

func (s *projectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.findProject(ctx, id)
}
