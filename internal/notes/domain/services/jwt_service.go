package services

import (
	"errors"
	"time"
)

// JWTErrors содержит ошибки, связанные с JWT токенами.
var (
	ErrInvalidToken    = errors.New("invalid JWT token")
	ErrExpiredToken    = errors.New("JWT token has expired")
	ErrGeneratingToken = errors.New("failed to generate JWT token")
)

// TokenClaims определяет данные, извлеченные из токена.
type TokenClaims struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
