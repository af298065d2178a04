// Package repositories определяет интерфейсы хранилища сервиса заметок.
package repositories

import (
	"context"
	"errors"

	"gonotes/internal/notes/domain/entities"
)

// MaxListNotes ограничивает размер списка заметок пользователя.
const MaxListNotes = 100

// ErrTimeout сообщает, что хранилище не ответило в срок запроса.
var ErrTimeout = errors.New("storage operation timed out")

// UserRepository определяет операции с пользователями.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)
}

// NoteRepository определяет операции с заметками. Все операции ограничены владельцем.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)

	GetByID(ctx context.Context, noteID, userID int64) (*entities.Note, error)

	ListByUserID(ctx context.Context, userID int64) ([]*entities.Note, error)

	Update(ctx context.Context, note *entities.Note) (*entities.Note, error)

	Delete(ctx context.Context, noteID, userID int64) error
}
