package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/db/postgres"
	"gonotes/pkg/logger"
)

// Константы сообщений репозитория пользователей.
const (
	ErrCreateUser       = "error creating user"
	ErrFindUserByName   = "error querying user by username"
	LogUserNotFound     = "user not found"
	LogUsernameConflict = "username already exists"
)

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	db Executor
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(db Executor) repositories.UserRepository {
	return &UserRepository{db: db}
}

// Create сохраняет нового пользователя. Занятое имя дает entities.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	query := `
        INSERT INTO users (username, password)
        VALUES ($1, $2)
        RETURNING id, username, password, created_at
    `

	var user entities.User
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		return conn.QueryRow(ctx, query, username, passwordHash).Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.CreatedAt,
		)
	})
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug(ctx, LogUsernameConflict, zap.String("username", username))
			return nil, entities.ErrUsernameTaken
		}
		log.Error(ctx, ErrCreateUser, zap.Error(err))
		return nil, storageError(ErrCreateUser, err)
	}

	return &user, nil
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByUsername"))

	query := `
        SELECT id, username, password, created_at
        FROM users
        WHERE username = $1
    `

	var user entities.User
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		return conn.QueryRow(ctx, query, username).Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.CreatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, LogUserNotFound, zap.String("username", username))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, ErrFindUserByName, zap.Error(err))
		return nil, storageError(ErrFindUserByName, err)
	}

	return &user, nil
}
