package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"filehub/internal/model"
	"filehub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "name", "email", "username", "password_hash", "profile", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &model.User{
		ID:           "user-1",
		Name:         "Ana",
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: "hash",
		Profile:      model.ProfileUser,
		CreatedAt:    now,
	}

	rows := sqlmock.NewRows(userCols).
		AddRow(u.ID, u.Name, u.Email, u.Username, u.PasswordHash, u.Profile, u.CreatedAt)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.Username, u.PasswordHash, u.Profile, u.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, u)

	assert.NoError(t, err)
	assert.Equal(t, "user-1", result.ID)
	assert.Equal(t, model.ProfileUser, result.Profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("user-1", "Ana", "ana@example.com", "ana", "hash", "USUARIO", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username = ?").
			WithArgs("ana").
			WillReturnRows(rows)

		u, err := repo.FindByUsername(ctx, "ana")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username = ?").
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByUsername(ctx, "ghost")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, u)
	})
}

func TestUserPostgres_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("misses are omitted", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("u1", "Ana", "ana@example.com", "ana", "hash", "USUARIO", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id IN").
			WithArgs("u1", "ghost").
			WillReturnRows(rows)

		users, err := repo.FindByIDs(ctx, []string{"u1", "ghost"})

		assert.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, "u1", users[0].ID)
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		users, err := repo.FindByIDs(ctx, nil)

		assert.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "Ana", "ana@example.com", "ana", "hash", "USUARIO", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	u := &model.User{
		ID:           "u1",
		Name:         "Ana Maria",
		Email:        "am@example.com",
		Username:     "ana",
		PasswordHash: "new-hash",
		Profile:      model.ProfileAdmin,
	}

	rows := sqlmock.NewRows(userCols).
		AddRow(u.ID, u.Name, u.Email, u.Username, u.PasswordHash, u.Profile, time.Now())

	mock.ExpectQuery("UPDATE users").
		WithArgs(u.ID, u.Name, u.Email, u.Username, u.PasswordHash, u.Profile).
		WillReturnRows(rows)

	result, err := repo.Update(ctx, u)

	assert.NoError(t, err)
	assert.Equal(t, model.ProfileAdmin, result.Profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_ExistsByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByID(ctx, "u1")

	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestUserPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM users").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "u1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
