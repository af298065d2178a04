// Package postgres содержит реализации репозиториев сервиса заметок поверх PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/db/postgres"
)

const uniqueViolation = "23505"

// Executor выдает соединение из пула на время fn. Ему удовлетворяет *postgres.Database.
type Executor interface {
	WithConn(ctx context.Context, fn func(ctx context.Context, conn postgres.Conn) error) error
}

// RepositoryFactory создает все необходимые репозитории для работы с PostgreSQL.
type RepositoryFactory struct {
	userRepo repositories.UserRepository
	noteRepo repositories.NoteRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(db Executor) *RepositoryFactory {
	return &RepositoryFactory{
		userRepo: NewUserRepository(db),
		noteRepo: NewNoteRepository(db),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}

// NoteRepository возвращает репозиторий заметок.
func (f *RepositoryFactory) NoteRepository() repositories.NoteRepository {
	return f.noteRepo
}

// storageError оборачивает ошибку хранилища, выделяя истечение срока запроса.
func storageError(msg string, err error) error {
	if errors.Is(err, postgres.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", msg, repositories.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
