package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonotes/internal/notes/adapters/postgres"
	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
)

var userColumns = []string{"id", "username", "password", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Успешное создание пользователя", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery("INSERT INTO users .+").
			WithArgs("alice", "hash").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(int64(1), "alice", "hash", createdAt))

		user, err := postgres.NewUserRepository(db).Create(ctx, "alice", "hash")
		require.NoError(t, err)
		assert.Equal(t, &entities.User{ID: 1, Username: "alice", PasswordHash: "hash", CreatedAt: createdAt}, user)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Имя пользователя уже занято", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery("INSERT INTO users .+").
			WithArgs("alice", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

		user, err := postgres.NewUserRepository(db).Create(ctx, "alice", "hash")
		assert.Nil(t, user)
		require.ErrorIs(t, err, entities.ErrUsernameTaken)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Общая ошибка БД", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery("INSERT INTO users .+").
			WithArgs("alice", "hash").
			WillReturnError(errors.New("database connection error"))

		user, err := postgres.NewUserRepository(db).Create(ctx, "alice", "hash")
		assert.Nil(t, user)
		require.Error(t, err)
		assert.Contains(t, err.Error(), postgres.ErrCreateUser)
		assert.NotErrorIs(t, err, entities.ErrUsernameTaken)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Пользователь найден", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(int64(7), "alice", "hash", createdAt))

		user, err := postgres.NewUserRepository(db).FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "hash", user.PasswordHash)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM users\s+WHERE username`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		user, err := postgres.NewUserRepository(db).FindByUsername(ctx, "ghost")
		assert.Nil(t, user)
		require.ErrorIs(t, err, entities.ErrUserNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Истек срок запроса", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM users\s+WHERE username`).
			WithArgs("alice").
			WillReturnError(context.DeadlineExceeded)

		_, err := postgres.NewUserRepository(db).FindByUsername(ctx, "alice")
		require.ErrorIs(t, err, repositories.ErrTimeout)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
