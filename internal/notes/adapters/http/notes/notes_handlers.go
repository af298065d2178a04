// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/adapters/http/middleware"
	"gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerGetNote    = "handling get note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"
	LogNoteRequestFailed = "note request failed"

	MsgNoteUpdated = "Note updated successfully"
	MsgNoteDeleted = "Note deleted successfully"

	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgFetchNotes         = "Failed to fetch notes"
	ErrMsgFetchNote          = "Failed to fetch note"
	ErrMsgCreateNote         = "Failed to create note"
	ErrMsgUpdateNote         = "Failed to update note"
	ErrMsgDeleteNote         = "Failed to delete note"

	paramNoteID = "id"
)

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	noteService api.NoteService
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(noteService api.NoteService) *Handler {
	return &Handler{noteService: noteService}
}

// ListNotes возвращает заметки пользователя, последние измененные первыми.
func (h *Handler) ListNotes(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(requestCtx, LogHandlerListNotes)

	userID, ok := owner(c)
	if !ok {
		return unauthorized(c)
	}

	notes, err := h.noteService.List(requestCtx, userID)
	if err != nil {
		log.Error(requestCtx, LogNoteRequestFailed, zap.Error(err))
		return handleError(c, err, ErrMsgFetchNotes)
	}

	return send(c, fiber.StatusOK, notes)
}

// GetNote обрабатывает запрос на получение заметки по ID.
func (h *Handler) GetNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.GetNote"))
	log.Debug(requestCtx, LogHandlerGetNote)

	userID, ok := owner(c)
	if !ok {
		return unauthorized(c)
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return notFound(c)
	}

	note, err := h.noteService.Get(requestCtx, userID, noteID)
	if err != nil {
		log.Debug(requestCtx, LogNoteRequestFailed, zap.Error(err))
		return handleError(c, err, ErrMsgFetchNote)
	}

	return send(c, fiber.StatusOK, note)
}

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreateNote)

	userID, ok := owner(c)
	if !ok {
		return unauthorized(c)
	}

	req, ok, err := bindNote(c)
	if !ok {
		return err
	}

	note, err := h.noteService.Create(requestCtx, userID, req.Title, req.Content, req.Color)
	if err != nil {
		log.Debug(requestCtx, LogNoteRequestFailed, zap.Error(err))
		return handleError(c, err, ErrMsgCreateNote)
	}

	return send(c, fiber.StatusCreated, dto.NewCreateNoteResponse(note))
}

// UpdateNote обрабатывает запрос на обновление заметки.
func (h *Handler) UpdateNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(requestCtx, LogHandlerUpdateNote)

	userID, ok := owner(c)
	if !ok {
		return unauthorized(c)
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return notFound(c)
	}

	req, ok, err := bindNote(c)
	if !ok {
		return err
	}

	if _, err := h.noteService.Update(requestCtx, userID, noteID, req.Title, req.Content, req.Color); err != nil {
		log.Debug(requestCtx, LogNoteRequestFailed, zap.Error(err))
		return handleError(c, err, ErrMsgUpdateNote)
	}

	return send(c, fiber.StatusOK, dto.MessageResponse{Message: MsgNoteUpdated})
}

// DeleteNote обрабатывает запрос на удаление заметки.
func (h *Handler) DeleteNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(requestCtx, LogHandlerDeleteNote)

	userID, ok := owner(c)
	if !ok {
		return unauthorized(c)
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.noteService.Delete(requestCtx, userID, noteID); err != nil {
		log.Debug(requestCtx, LogNoteRequestFailed, zap.Error(err))
		return handleError(c, err, ErrMsgDeleteNote)
	}

	return send(c, fiber.StatusOK, dto.MessageResponse{Message: MsgNoteDeleted})
}

func owner(c fiber.Ctx) (int64, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// parseNoteID разбирает идентификатор из пути. Нечисловой идентификатор не найдет заметку.
func parseNoteID(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(paramNoteID), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bindNote читает тело запроса. При ok == false ответ уже отправлен.
func bindNote(c fiber.Ctx) (dto.NoteRequest, bool, error) {
	var req dto.NoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return req, false, send(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: ErrMsgInvalidRequestBody})
	}
	if err := dto.Validate(&req); err != nil {
		return req, false, send(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: ErrMsgTitleRequired})
	}
	return req, true, nil
}
