package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/api"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/logger"
)

const (
	msgNoteCreated = "note created"
	msgNoteUpdated = "note updated"
	msgNoteDeleted = "note deleted"
	msgInvalidNote = "invalid note fields"

	errCtxValidatingNote = "validating note"
	errCtxListingNotes   = "listing notes"
	errCtxGettingNote    = "getting note"
	errCtxCreatingNote   = "creating note"
	errCtxUpdatingNote   = "updating note"
	errCtxDeletingNote   = "deleting note"
)

// NoteUseCase реализует api.NoteService.
type NoteUseCase struct {
	noteRepo repositories.NoteRepository
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(noteRepo repositories.NoteRepository) api.NoteService {
	return &NoteUseCase{noteRepo: noteRepo}
}

// List возвращает заметки пользователя, последние измененные первыми.
func (uc *NoteUseCase) List(ctx context.Context, userID int64) ([]*entities.Note, error) {
	notes, err := uc.noteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}
	return notes, nil
}

// Get возвращает заметку владельца.
func (uc *NoteUseCase) Get(ctx context.Context, userID, noteID int64) (*entities.Note, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxGettingNote, err)
	}
	return note, nil
}

// Create создает заметку. Пустой цвет заменяется цветом по умолчанию.
func (uc *NoteUseCase) Create(ctx context.Context, userID int64, title, content, color string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteUseCase.Create"), zap.Int64("userID", userID))

	title, err := validateNote(title, color)
	if err != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, err)
	}

	note, err := uc.noteRepo.Create(ctx, entities.NewNote(userID, title, content, color))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreatingNote, err)
	}

	log.Info(ctx, msgNoteCreated, zap.Int64("noteID", note.ID))
	return note, nil
}

// Update заменяет заголовок, текст и цвет заметки. Пустой цвет сохраняет прежний.
func (uc *NoteUseCase) Update(ctx context.Context, userID, noteID int64, title, content, color string) (*entities.Note, error) {
	log := logger.Log(ctx).With(
		zap.String("method", "NoteUseCase.Update"),
		zap.Int64("userID", userID),
		zap.Int64("noteID", noteID),
	)

	title, err := validateNote(title, color)
	if err != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, err)
	}

	note, err := uc.noteRepo.Update(ctx, &entities.Note{
		ID:      noteID,
		UserID:  userID,
		Title:   title,
		Content: content,
		Color:   color,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingNote, err)
	}

	log.Info(ctx, msgNoteUpdated)
	return note, nil
}

// Delete удаляет заметку владельца.
func (uc *NoteUseCase) Delete(ctx context.Context, userID, noteID int64) error {
	if err := uc.noteRepo.Delete(ctx, noteID, userID); err != nil {
		return fmt.Errorf("%s: %w", errCtxDeletingNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteDeleted, zap.Int64("userID", userID), zap.Int64("noteID", noteID))
	return nil
}

func validateNote(title, color string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", entities.ErrEmptyTitle
	}
	if err := entities.ValidateColor(color); err != nil {
		return "", err
	}
	return title, nil
}
