package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"filehub/internal/apperr"
	"filehub/internal/model"
	repoMocks "filehub/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mProjects *repoMocks.MockProjectRepository, mUsers *repoMocks.MockUserRepository)
		wantErrIs  func(error) bool
		wantErrMsg string
		checkProj  func(t *testing.T, p *model.Project)
	}{
		{
			name: "happy path resolves member and approver ids",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("ExistsByID", ctx, "creator").Return(true, nil)
				mProjects.On("ExistsByName", ctx, "Obra Norte").Return(false, nil)
				mUsers.On("FindByIDs", ctx, []string{"m1", "ghost"}).
					Return([]model.User{{ID: "m1"}}, nil)
				mUsers.On("FindByIDs", ctx, []string{"a1"}).
					Return([]model.User{{ID: "a1"}}, nil)
				mProjects.On("Create", ctx, mock.MatchedBy(func(p *model.Project) bool {
					return p.ID != "" && p.Name == "Obra Norte" && p.CreatorID == "creator"
				})).Return(func(ctx context.Context, p *model.Project) *model.Project {
					return p
				}, nil)
			},
			checkProj: func(t *testing.T, p *model.Project) {
				// unresolvable ids are dropped, not an error
				assert.Equal(t, []string{"m1"}, p.MemberIDs)
				assert.Equal(t, []string{"a1"}, p.ApproverIDs)
			},
		},
		{
			name: "creator does not exist",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("ExistsByID", ctx, "creator").Return(false, nil)
			},
			wantErrIs:  apperr.IsNotFound,
			wantErrMsg: "creator not found with id: creator",
		},
		{
			name: "duplicate name",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("ExistsByID", ctx, "creator").Return(true, nil)
				mProjects.On("ExistsByName", ctx, "Obra Norte").Return(true, nil)
			},
			wantErrIs:  apperr.IsConflict,
			wantErrMsg: "project name already in use",
		},
		{
			name: "repository error",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("ExistsByID", ctx, "creator").Return(false, errors.New("db fail"))
			},
			wantErrMsg: "db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProjects := new(repoMocks.MockProjectRepository)
			mUsers := new(repoMocks.MockUserRepository)
			svc := NewProjectService(mProjects, mUsers, nil)

			tt.setupMocks(mProjects, mUsers)

			p, err := svc.Create(ctx, "Obra Norte", "creator", []string{"m1", "ghost"}, []string{"a1"})

			switch {
			case tt.wantErrIs != nil:
				assert.Error(t, err)
				assert.True(t, tt.wantErrIs(err))
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			case tt.wantErrMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				assert.NoError(t, err)
				if tt.checkProj != nil {
					tt.checkProj(t, p)
				}
			}

			mProjects.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("wholesale replace keeps created_at semantics in repo", func(t *testing.T) {
		mProjects := new(repoMocks.MockProjectRepository)
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewProjectService(mProjects, mUsers, nil)

		stored := &model.Project{
			ID:          "proj-1",
			Name:        "Old",
			CreatorID:   "creator",
			MemberIDs:   []string{"m1"},
			ApproverIDs: []string{"a1"},
		}
		mProjects.On("FindByID", ctx, "proj-1").Return(stored, nil)
		mUsers.On("ExistsByID", ctx, "creator2").Return(true, nil)
		mUsers.On("FindByIDs", ctx, []string{"m2"}).Return([]model.User{{ID: "m2"}}, nil)
		mUsers.On("FindByIDs", ctx, []string{"a2"}).Return([]model.User{{ID: "a2"}}, nil)
		mProjects.On("Save", ctx, mock.Anything).
			Return(func(ctx context.Context, p *model.Project) *model.Project {
				return p
			}, nil)

		p, err := svc.Update(ctx, "proj-1", "New", "creator2", []string{"m2"}, []string{"a2"})

		assert.NoError(t, err)
		assert.Equal(t, "New", p.Name)
		assert.Equal(t, "creator2", p.CreatorID)
		assert.Equal(t, []string{"m2"}, p.MemberIDs)
		assert.Equal(t, []string{"a2"}, p.ApproverIDs)
		mProjects.AssertExpectations(t)
		mUsers.AssertExpectations(t)
	})

	t.Run("project not found", func(t *testing.T) {
		mProjects := new(repoMocks.MockProjectRepository)
		svc := NewProjectService(mProjects, nil, nil)

		mProjects.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := svc.Update(ctx, "missing", "New", "creator", nil, nil)

		assert.True(t, apperr.IsNotFound(err))
		mProjects.AssertExpectations(t)
	})
}

func TestProjectService_RoleToggles(t *testing.T) {
	ctx := context.Background()

	// Each case starts from the same stored project and applies one role
	// operation; the saved aggregate must show the two sets stay exclusive.
	stored := func() *model.Project {
		return &model.Project{
			ID:          "proj-1",
			CreatorID:   "creator",
			MemberIDs:   []string{"m1", "both"},
			ApproverIDs: []string{"a1"},
		}
	}

	tests := []struct {
		name          string
		run           func(svc ProjectService) (*model.Project, error)
		wantMembers   []string
		wantApprovers []string
	}{
		{
			name: "add member is idempotent",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.AddMember(ctx, "proj-1", "m1")
			},
			wantMembers:   []string{"m1", "both"},
			wantApprovers: []string{"a1"},
		},
		{
			name: "adding an approver as member demotes them",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.AddMember(ctx, "proj-1", "a1")
			},
			wantMembers:   []string{"m1", "both", "a1"},
			wantApprovers: []string{},
		},
		{
			name: "promoting a member to approver removes membership",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.AddApprovers(ctx, "proj-1", []string{"m1"})
			},
			wantMembers:   []string{"both"},
			wantApprovers: []string{"a1", "m1"},
		},
		{
			name: "remove member leaves approvers alone",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.RemoveMember(ctx, "proj-1", "m1")
			},
			wantMembers:   []string{"both"},
			wantApprovers: []string{"a1"},
		},
		{
			name: "remove member of a non-member is a no-op",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.RemoveMember(ctx, "proj-1", "a1")
			},
			wantMembers:   []string{"m1", "both"},
			wantApprovers: []string{"a1"},
		},
		{
			name: "remove approver leaves members alone",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.RemoveApprover(ctx, "proj-1", "a1")
			},
			wantMembers:   []string{"m1", "both"},
			wantApprovers: []string{},
		},
		{
			name: "remove approver of a non-approver is a no-op",
			run: func(svc ProjectService) (*model.Project, error) {
				return svc.RemoveApprover(ctx, "proj-1", "m1")
			},
			wantMembers:   []string{"m1", "both"},
			wantApprovers: []string{"a1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProjects := new(repoMocks.MockProjectRepository)
			mUsers := new(repoMocks.MockUserRepository)
			svc := NewProjectService(mProjects, mUsers, nil)

			mProjects.On("FindByID", ctx, "proj-1").Return(stored(), nil)
			mUsers.On("ExistsByID", ctx, mock.Anything).Return(true, nil)
			mProjects.On("Save", ctx, mock.Anything).
				Return(func(ctx context.Context, p *model.Project) *model.Project {
					return p
				}, nil)

			p, err := tt.run(svc)

			assert.NoError(t, err)
			assert.ElementsMatch(t, tt.wantMembers, p.MemberIDs)
			assert.ElementsMatch(t, tt.wantApprovers, p.ApproverIDs)
			mProjects.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestProjectService_AddApprovers_BatchAbort(t *testing.T) {
	ctx := context.Background()

	mProjects := new(repoMocks.MockProjectRepository)
	mUsers := new(repoMocks.MockUserRepository)
	svc := NewProjectService(mProjects, mUsers, nil)

	mProjects.On("FindByID", ctx, "proj-1").Return(&model.Project{
		ID:        "proj-1",
		MemberIDs: []string{"u1"},
	}, nil)
	mUsers.On("ExistsByID", ctx, "u1").Return(true, nil)
	mUsers.On("ExistsByID", ctx, "ghost").Return(false, nil)

	// Save must never be called: the missing second user aborts the batch
	// before anything is persisted.
	_, err := svc.AddApprovers(ctx, "proj-1", []string{"u1", "ghost"})

	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "user not found with id: ghost")
	mProjects.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mProjects.AssertExpectations(t)
	mUsers.AssertExpectations(t)
}

func TestProjectService_RoleFlipFlop(t *testing.T) {
	ctx := context.Background()

	mProjects := new(repoMocks.MockProjectRepository)
	mUsers := new(repoMocks.MockUserRepository)
	svc := NewProjectService(mProjects, mUsers, nil)

	p := &model.Project{ID: "proj-1", CreatorID: "creator"}
	mProjects.On("FindByID", ctx, "proj-1").Return(p, nil)
	mUsers.On("ExistsByID", ctx, "u1").Return(true, nil)
	mProjects.On("Save", ctx, mock.Anything).
		Return(func(ctx context.Context, p *model.Project) *model.Project {
			return p
		}, nil)

	_, err := svc.AddMember(ctx, "proj-1", "u1")
	assert.NoError(t, err)
	_, err = svc.AddApprovers(ctx, "proj-1", []string{"u1"})
	assert.NoError(t, err)
	res, err := svc.AddMember(ctx, "proj-1", "u1")
	assert.NoError(t, err)

	// after member -> approver -> member the user holds exactly one role
	assert.Equal(t, model.RoleMember, res.RoleOf("u1"))
	assert.Equal(t, []string{"u1"}, res.MemberIDs)
	assert.Empty(t, res.ApproverIDs)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mProjects *repoMocks.MockProjectRepository, mDocs *repoMocks.MockDocumentRepository)
		wantErrIs  func(error) bool
		wantErrMsg string
	}{
		{
			name: "happy path",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mDocs *repoMocks.MockDocumentRepository) {
				mProjects.On("ExistsByID", ctx, "proj-1").Return(true, nil)
				mDocs.On("CountByProjectID", ctx, "proj-1").Return(0, nil)
				mProjects.On("Delete", ctx, "proj-1").Return(nil)
			},
		},
		{
			name: "project not found",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mDocs *repoMocks.MockDocumentRepository) {
				mProjects.On("ExistsByID", ctx, "proj-1").Return(false, nil)
			},
			wantErrIs: apperr.IsNotFound,
		},
		{
			name: "documents still attached",
			setupMocks: func(mProjects *repoMocks.MockProjectRepository, mDocs *repoMocks.MockDocumentRepository) {
				mProjects.On("ExistsByID", ctx, "proj-1").Return(true, nil)
				mDocs.On("CountByProjectID", ctx, "proj-1").Return(3, nil)
			},
			wantErrIs:  apperr.IsConflict,
			wantErrMsg: "project has 3 documents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProjects := new(repoMocks.MockProjectRepository)
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewProjectService(mProjects, nil, mDocs)

			tt.setupMocks(mProjects, mDocs)

			err := svc.Delete(ctx, "proj-1")

			if tt.wantErrIs != nil {
				assert.Error(t, err)
				assert.True(t, tt.wantErrIs(err))
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
			} else {
				assert.NoError(t, err)
			}

			mProjects.AssertExpectations(t)
			mDocs.AssertExpectations(t)
		})
	}
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mProjects := new(repoMocks.MockProjectRepository)
		svc := NewProjectService(mProjects, nil, nil)

		mProjects.On("FindByID", ctx, "proj-1").Return(&model.Project{ID: "proj-1"}, nil)

		p, err := svc.Get(ctx, "proj-1")

		assert.NoError(t, err)
		assert.Equal(t, "proj-1", p.ID)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		mProjects := new(repoMocks.MockProjectRepository)
		svc := NewProjectService(mProjects, nil, nil)

		mProjects.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, "missing")

		assert.True(t, apperr.IsNotFound(err))
	})
}
