// Package services определяет интерфейсы сервисов аутентификации.
package services

import (
	"context"
	"time"

	"gonotes/internal/notes/domain/services"
)

// PasswordService определяет операции для манипулирования паролем.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenService определяет интерфейс для операций с токенами JWT.
type TokenService interface {
	GenerateToken(ctx context.Context, userID int64, username string) (string, time.Time, error)

	ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error)
}
