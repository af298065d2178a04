package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonotes/internal/notes/adapters/postgres"
	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
)

var noteColumns = []string{"id", "user_id", "title", "content", "color", "created_at", "updated_at"}

func TestNoteRepository_Create(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Цвет по умолчанию", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery("INSERT INTO notes .+").
			WithArgs(int64(3), "Groceries", "milk", entities.DefaultColor).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

		note, err := postgres.NewNoteRepository(db).Create(ctx, &entities.Note{UserID: 3, Title: "Groceries", Content: "milk"})
		require.NoError(t, err)
		assert.Equal(t, int64(11), note.ID)
		assert.Equal(t, int64(3), note.UserID)
		assert.Equal(t, entities.DefaultColor, note.Color)
		assert.Equal(t, now, note.CreatedAt)
		assert.Equal(t, now, note.UpdatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка БД", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery("INSERT INTO notes .+").
			WithArgs(int64(3), "t", "", "#fff").
			WillReturnError(errors.New("insert or update violates foreign key constraint"))

		note, err := postgres.NewNoteRepository(db).Create(ctx, &entities.Note{UserID: 3, Title: "t", Color: "#fff"})
		assert.Nil(t, note)
		require.Error(t, err)
		assert.Contains(t, err.Error(), postgres.ErrCreateNote)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_GetByID(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Заметка владельца", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM notes\s+WHERE id = \$1 AND user_id = \$2`).
			WithArgs(int64(5), int64(3)).
			WillReturnRows(pgxmock.NewRows(noteColumns).AddRow(int64(5), int64(3), "t", "c", "#abc", now, now))

		note, err := postgres.NewNoteRepository(db).GetByID(ctx, 5, 3)
		require.NoError(t, err)
		assert.Equal(t, &entities.Note{ID: 5, UserID: 3, Title: "t", Content: "c", Color: "#abc", CreatedAt: now, UpdatedAt: now}, note)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Чужая или отсутствующая заметка", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM notes\s+WHERE id = \$1 AND user_id = \$2`).
			WithArgs(int64(5), int64(4)).
			WillReturnError(pgx.ErrNoRows)

		note, err := postgres.NewNoteRepository(db).GetByID(ctx, 5, 4)
		assert.Nil(t, note)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_ListByUserID(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Список в порядке изменения", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`ORDER BY updated_at DESC, id DESC\s+LIMIT \$2`).
			WithArgs(int64(3), repositories.MaxListNotes).
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(2), int64(3), "newer", "", "#fef3c7", now, now.Add(time.Minute)).
				AddRow(int64(1), int64(3), "older", "", "#fef3c7", now, now))

		notes, err := postgres.NewNoteRepository(db).ListByUserID(ctx, 3)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "newer", notes[0].Title)
		assert.Equal(t, "older", notes[1].Title)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пустой список не nil", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM notes\s+WHERE user_id = \$1`).
			WithArgs(int64(9), repositories.MaxListNotes).
			WillReturnRows(pgxmock.NewRows(noteColumns))

		notes, err := postgres.NewNoteRepository(db).ListByUserID(ctx, 9)
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка чтения строк", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		rowErr := errors.New("connection reset")
		mock.ExpectQuery(`FROM notes\s+WHERE user_id = \$1`).
			WithArgs(int64(3), repositories.MaxListNotes).
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(1), int64(3), "t", "", "#fff", now, now).
				RowError(0, rowErr))

		notes, err := postgres.NewNoteRepository(db).ListByUserID(ctx, 3)
		assert.Nil(t, notes)
		require.ErrorIs(t, err, rowErr)
		assert.Contains(t, err.Error(), postgres.ErrListNotes)
	})

	t.Run("Истек срок запроса", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`FROM notes\s+WHERE user_id = \$1`).
			WithArgs(int64(3), repositories.MaxListNotes).
			WillReturnError(context.DeadlineExceeded)

		_, err := postgres.NewNoteRepository(db).ListByUserID(ctx, 3)
		require.ErrorIs(t, err, repositories.ErrTimeout)
	})
}

func TestNoteRepository_Update(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Обновление с сохранением цвета", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`UPDATE notes\s+SET title = \$1`).
			WithArgs("new", "body", "", int64(5), int64(3)).
			WillReturnRows(pgxmock.NewRows(noteColumns).AddRow(int64(5), int64(3), "new", "body", "#123456", created, now))

		note, err := postgres.NewNoteRepository(db).Update(ctx, &entities.Note{ID: 5, UserID: 3, Title: "new", Content: "body"})
		require.NoError(t, err)
		assert.Equal(t, "#123456", note.Color)
		assert.Equal(t, now, note.UpdatedAt)
		assert.False(t, note.UpdatedAt.Before(note.CreatedAt))

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Заметка не найдена", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`UPDATE notes\s+SET title = \$1`).
			WithArgs("new", "", "#fff", int64(5), int64(4)).
			WillReturnError(pgx.ErrNoRows)

		note, err := postgres.NewNoteRepository(db).Update(ctx, &entities.Note{ID: 5, UserID: 4, Title: "new", Color: "#fff"})
		assert.Nil(t, note)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка хранилища отличается от отсутствия заметки", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectQuery(`UPDATE notes\s+SET title = \$1`).
			WithArgs("new", "", "", int64(5), int64(3)).
			WillReturnError(errors.New("disk full"))

		_, err := postgres.NewNoteRepository(db).Update(ctx, &entities.Note{ID: 5, UserID: 3, Title: "new"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, entities.ErrNoteNotFound)
		assert.Contains(t, err.Error(), postgres.ErrUpdateNote)
	})
}

func TestNoteRepository_Delete(t *testing.T) {
	t.Run("Успешное удаление", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectExec(`DELETE FROM notes WHERE id = \$1 AND user_id = \$2`).
			WithArgs(int64(5), int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, postgres.NewNoteRepository(db).Delete(ctx, 5, 3))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ноль затронутых строк", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(int64(5), int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := postgres.NewNoteRepository(db).Delete(ctx, 5, 4)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка БД", func(t *testing.T) {
		ctx, db, mock := newTestDatabase(t)

		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(int64(5), int64(3)).
			WillReturnError(errors.New("lock timeout"))

		err := postgres.NewNoteRepository(db).Delete(ctx, 5, 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, entities.ErrNoteNotFound)
		assert.Contains(t, err.Error(), postgres.ErrDeleteNote)
	})
}

func TestRepositoryFactory(t *testing.T) {
	_, db, _ := newTestDatabase(t)

	factory := postgres.NewRepositoryFactory(db)
	assert.NotNil(t, factory.UserRepository())
	assert.NotNil(t, factory.NoteRepository())
}
