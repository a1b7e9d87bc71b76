package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"filehub/internal/auth"
	"filehub/internal/config"
	"filehub/internal/model"
	"filehub/internal/repository"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult carries the issued token plus the authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService authenticates users and issues access tokens.
type AuthService interface {
	// Login checks the username/password pair and returns a signed token.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// EnsureAdmin creates the bootstrap ADMIN account if it is configured
	// and does not exist yet. A nil error with no action means nothing was
	// configured.
	EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error
}

type authService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, issuer *auth.TokenIssuer) AuthService {
	return &authService{users: users, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.CreateAccessToken(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	_, err := s.users.FindByUsername(ctx, cfg.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Name:         "Administrator",
		Email:        cfg.Email,
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Profile:      model.ProfileAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	return err
}
