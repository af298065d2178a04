// Package entities определяет сущности домена сервиса заметок.
package entities

import (
	"errors"
	"regexp"
	"time"
)

// DefaultColor - цвет заметки, если пользователь его не выбрал.
const DefaultColor = "#fef3c7"

// Ошибки домена заметок.
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyTitle   = errors.New("title is required")
	ErrInvalidColor = errors.New("color must be a hex value like #rgb or #rrggbb")
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Note представляет собой заметку пользователя.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote создает заметку пользователя; пустой цвет заменяется на DefaultColor.
func NewNote(userID int64, title, content, color string) *Note {
	if color == "" {
		color = DefaultColor
	}
	return &Note{
		UserID:  userID,
		Title:   title,
		Content: content,
		Color:   color,
	}
}

// ValidateColor проверяет формат цвета. Пустая строка допустима.
func ValidateColor(color string) error {
	if color == "" || colorPattern.MatchString(color) {
		return nil
	}
	return ErrInvalidColor
}
