package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrLongPassword  = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes - предел длины пароля, который учитывает bcrypt.
const MaxPasswordBytes = 72

// User представляет зарегистрированного пользователя.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
