package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"filehub/internal/apperr"
	"filehub/internal/model"
	"filehub/internal/repository"
)

// RegisterInput carries the fields of a new user account.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
	Profile  model.Profile
}

// UserPatch is an explicit partial update: only non-nil fields are applied.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Profile  *model.Profile
}

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserService defines the use cases for managing user accounts.
type UserService interface {
	// Register creates a new account with a bcrypt-hashed password.
	// A taken username is a conflict.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// List returns users using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*UserListResult, error)

	// Get returns a single user by ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// GetByUsername returns a single user by unique username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Update applies the present patch fields to an existing user.
	Update(ctx context.Context, id string, patch UserPatch) (*model.User, error)

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Username == "" {
		return nil, errors.New("username is required")
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}
	if in.Profile == "" {
		in.Profile = model.ProfileUser
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("username already in use: %s", in.Username))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Profile:      in.Profile,
		CreatedAt:    time.Now().UTC(),
	}
	return s.users.Create(ctx, u)
}

func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.users.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", username)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id string, patch UserPatch) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if patch.Profile != nil {
		u.Profile = *patch.Profile
	}

	return s.users.Update(ctx, u)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("user", id)
	}
	return s.users.Delete(ctx, id)
}
