package dto

import "gonotes/internal/notes/domain/entities"

// NoteRequest содержит поля заметки для создания и обновления.
type NoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

// CreateNoteResponse - ответ на создание заметки.
type CreateNoteResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color"`
	UserID  int64  `json:"user_id"`
}

// NewCreateNoteResponse собирает ответ из созданной заметки.
func NewCreateNoteResponse(note *entities.Note) CreateNoteResponse {
	return CreateNoteResponse{
		ID:      note.ID,
		Title:   note.Title,
		Content: note.Content,
		Color:   note.Color,
		UserID:  note.UserID,
	}
}
