// Package api определяет сценарии, доступные HTTP слою.
package api

import (
	"context"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/domain/services"
	"gonotes/pkg/pool"
)

// AuthService - регистрация, вход и проверка токена.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*entities.User, error)

	Login(ctx context.Context, username, password string) (*services.AuthResult, error)

	Authenticate(ctx context.Context, token string) (*services.TokenClaims, error)
}

// NoteService - операции с заметками от имени владельца.
type NoteService interface {
	List(ctx context.Context, userID int64) ([]*entities.Note, error)

	Get(ctx context.Context, userID, noteID int64) (*entities.Note, error)

	Create(ctx context.Context, userID int64, title, content, color string) (*entities.Note, error)

	Update(ctx context.Context, userID, noteID int64, title, content, color string) (*entities.Note, error)

	Delete(ctx context.Context, userID, noteID int64) error
}

// HealthChecker проверяет доступность хранилища и отдает состояние пула.
type HealthChecker interface {
	Ping(ctx context.Context) error

	Stats() pool.Stats
}
