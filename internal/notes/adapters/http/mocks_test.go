package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/domain/services"
	"gonotes/pkg/pool"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*entities.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

type mockNoteService struct {
	mock.Mock
}

func (m *mockNoteService) List(ctx context.Context, userID int64) ([]*entities.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Note), args.Error(1)
}

func (m *mockNoteService) Get(ctx context.Context, userID, noteID int64) (*entities.Note, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteService) Create(ctx context.Context, userID int64, title, content, color string) (*entities.Note, error) {
	args := m.Called(ctx, userID, title, content, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteService) Update(ctx context.Context, userID, noteID int64, title, content, color string) (*entities.Note, error) {
	args := m.Called(ctx, userID, noteID, title, content, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteService) Delete(ctx context.Context, userID, noteID int64) error {
	return m.Called(ctx, userID, noteID).Error(0)
}

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockHealthChecker) Stats() pool.Stats {
	return m.Called().Get(0).(pool.Stats)
}
