package mocks

import (
	"context"

	"filehub/internal/config"
	"filehub/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
