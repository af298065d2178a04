// Package services описывает ошибки и значения доменных сервисов аутентификации.
package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidParams      = errors.New("username and password are required")
)

// AuthResult - результат успешного входа.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    int64
	Username  string
}
