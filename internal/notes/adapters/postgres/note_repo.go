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

// Константы сообщений репозитория заметок.
const (
	ErrCreateNote  = "failed to create note"
	ErrGetNote     = "failed to get note"
	ErrListNotes   = "failed to list notes"
	ErrScanNote    = "failed to scan note"
	ErrUpdateNote  = "failed to update note"
	ErrDeleteNote  = "failed to delete note"
	LogNoteMissing = "note not found or not owned by user"
)

const noteColumns = `id, user_id, title, content, color, created_at, updated_at`

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	db Executor
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(db Executor) repositories.NoteRepository {
	return &NoteRepository{db: db}
}

func scanNote(row pgx.Row, note *entities.Note) error {
	return row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Color,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
}

// Create сохраняет новую заметку; id и отметки времени назначает база.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.Int64("userID", note.UserID))

	created := *note
	if created.Color == "" {
		created.Color = entities.DefaultColor
	}

	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		return conn.QueryRow(ctx,
			`INSERT INTO notes (user_id, title, content, color)
             VALUES ($1, $2, $3, $4)
             RETURNING id, created_at, updated_at`,
			created.UserID, created.Title, created.Content, created.Color,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	})
	if err != nil {
		log.Error(ctx, ErrCreateNote, zap.Error(err))
		return nil, storageError(ErrCreateNote, err)
	}

	log.Debug(ctx, "note created", zap.Int64("noteID", created.ID))
	return &created, nil
}

// GetByID получает заметку по ID, только если она принадлежит пользователю.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, userID int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))

	var note entities.Note
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		return scanNote(conn.QueryRow(ctx,
			`SELECT `+noteColumns+`
             FROM notes
             WHERE id = $1 AND user_id = $2`,
			noteID, userID,
		), &note)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, LogNoteMissing, zap.Int64("noteID", noteID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, ErrGetNote, zap.Error(err))
		return nil, storageError(ErrGetNote, err)
	}

	return &note, nil
}

// ListByUserID возвращает не более MaxListNotes заметок, последние измененные первыми.
func (r *NoteRepository) ListByUserID(ctx context.Context, userID int64) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByUserID"))
	log.Debug(ctx, "listing notes", zap.Int64("userID", userID))

	notes := make([]*entities.Note, 0)
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+noteColumns+`
             FROM notes
             WHERE user_id = $1
             ORDER BY updated_at DESC, id DESC
             LIMIT $2`,
			userID, repositories.MaxListNotes,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var note entities.Note
			if err := scanNote(rows, &note); err != nil {
				log.Error(ctx, ErrScanNote, zap.Error(err))
				return err
			}
			notes = append(notes, &note)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error(ctx, ErrListNotes, zap.Error(err))
		return nil, storageError(ErrListNotes, err)
	}

	return notes, nil
}

// Update меняет заголовок, текст и цвет заметки владельца. Пустой цвет сохраняет прежний.
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Update"))
	log.Debug(ctx, "updating note", zap.Int64("noteID", note.ID))

	var updated entities.Note
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		return scanNote(conn.QueryRow(ctx,
			`UPDATE notes
             SET title = $1,
                 content = $2,
                 color = COALESCE(NULLIF($3, ''), color),
                 updated_at = GREATEST(updated_at, NOW())
             WHERE id = $4 AND user_id = $5
             RETURNING `+noteColumns,
			note.Title, note.Content, note.Color, note.ID, note.UserID,
		), &updated)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, LogNoteMissing, zap.Int64("noteID", note.ID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, ErrUpdateNote, zap.Error(err))
		return nil, storageError(ErrUpdateNote, err)
	}

	return &updated, nil
}

// Delete удаляет заметку владельца.
func (r *NoteRepository) Delete(ctx context.Context, noteID, userID int64) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, "deleting note", zap.Int64("noteID", noteID))

	var affected int64
	err := r.db.WithConn(ctx, func(ctx context.Context, conn postgres.Conn) error {
		tag, err := conn.Exec(ctx,
			`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
			noteID, userID,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		log.Error(ctx, ErrDeleteNote, zap.Error(err))
		return storageError(ErrDeleteNote, err)
	}

	if affected == 0 {
		log.Debug(ctx, LogNoteMissing, zap.Int64("noteID", noteID))
		return entities.ErrNoteNotFound
	}

	return nil
}
