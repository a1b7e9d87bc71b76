package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"filehub/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var projectCols = []string{"id", "name", "creator_id", "created_at"}

func TestProjectPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	p := &model.Project{
		ID:          "proj-1",
		Name:        "Obra Norte",
		CreatorID:   "creator",
		MemberIDs:   []string{"m1"},
		ApproverIDs: []string{"a1"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(p.ID, p.Name, p.CreatorID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(p.ID, p.Name, p.CreatorID, time.Now().UTC()))
	mock.ExpectExec("DELETE FROM project_members").
		WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM project_approvers").
		WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO project_members").
		WithArgs(p.ID, "m1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO project_approvers").
		WithArgs(p.ID, "a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Create(ctx, p)

	assert.NoError(t, err)
	assert.Equal(t, "proj-1", result.ID)
	assert.False(t, result.CreatedAt.IsZero())
	assert.Equal(t, []string{"m1"}, result.MemberIDs)
	assert.Equal(t, []string{"a1"}, result.ApproverIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour).UTC()
	p := &model.Project{
		ID:          "proj-1",
		Name:        "Renamed",
		CreatorID:   "creator",
		MemberIDs:   []string{"m1", "m2"},
		ApproverIDs: []string{},
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE projects").
			WithArgs(p.ID, p.Name, p.CreatorID).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow(p.ID, p.Name, p.CreatorID, created))
		mock.ExpectExec("DELETE FROM project_members").
			WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM project_approvers").
			WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO project_members").
			WithArgs(p.ID, "m1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO project_members").
			WithArgs(p.ID, "m2").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := repo.Save(ctx, p)

		assert.NoError(t, err)
		// created_at is whatever the row already carried
		assert.Equal(t, created, result.CreatedAt)
		assert.Equal(t, []string{"m1", "m2"}, result.MemberIDs)
		assert.Empty(t, result.ApproverIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("membership insert failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE projects").
			WithArgs(p.ID, p.Name, p.CreatorID).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow(p.ID, p.Name, p.CreatorID, created))
		mock.ExpectExec("DELETE FROM project_members").
			WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM project_approvers").
			WithArgs(p.ID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO project_members").
			WithArgs(p.ID, "m1").WillReturnError(errors.New("insert fail"))
		mock.ExpectRollback()

		_, err := repo.Save(ctx, p)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	t.Run("found with membership sets", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM projects WHERE id = ?").
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("proj-1", "Obra Norte", "creator", time.Now()))
		mock.ExpectQuery("SELECT user_id FROM project_members").
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("m1").AddRow("m2"))
		mock.ExpectQuery("SELECT user_id FROM project_approvers").
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("a1"))

		p, err := repo.FindByID(ctx, "proj-1")

		assert.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, p.MemberIDs)
		assert.Equal(t, []string{"a1"}, p.ApproverIDs)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM projects WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindByID(ctx, "missing")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, p)
	})
}

func TestProjectPostgres_FindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM projects ORDER BY").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("proj-1", "A", "creator", time.Now()).
			AddRow("proj-2", "B", "creator", time.Now()))
	mock.ExpectQuery("SELECT user_id FROM project_members").
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("m1"))
	mock.ExpectQuery("SELECT user_id FROM project_approvers").
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectQuery("SELECT user_id FROM project_members").
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectQuery("SELECT user_id FROM project_approvers").
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("a1"))

	items, err := repo.FindAll(ctx)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{"m1"}, items[0].MemberIDs)
	assert.Equal(t, []string{"a1"}, items[1].ApproverIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsByID(ctx, "proj-1")

		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("by name", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("Obra Norte").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsByName(ctx, "Obra Norte")

		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestProjectPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM project_members").
		WithArgs("proj-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM project_approvers").
		WithArgs("proj-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM projects").
		WithArgs("proj-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Delete(ctx, "proj-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
