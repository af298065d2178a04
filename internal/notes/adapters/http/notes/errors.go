package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/adapters/http/middleware"
	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
)

// Сообщения об ошибках для клиента.
const (
	ErrMsgNoteNotFound  = "Note not found"
	ErrMsgTitleRequired = "Title is required"
	ErrMsgInvalidColor  = "Color must be #rgb or #rrggbb"
	ErrMsgTimeout       = "Request timed out"

	errSendResponse = "error sending response"
)

// handleError переводит ошибку сценария в HTTP-ответ; fallback уходит клиенту с кодом 500.
func handleError(c fiber.Ctx, err error, fallback string) error {
	status, msg := fiber.StatusInternalServerError, fallback

	switch {
	case errors.Is(err, entities.ErrNoteNotFound):
		status, msg = fiber.StatusNotFound, ErrMsgNoteNotFound
	case errors.Is(err, entities.ErrEmptyTitle):
		status, msg = fiber.StatusBadRequest, ErrMsgTitleRequired
	case errors.Is(err, entities.ErrInvalidColor):
		status, msg = fiber.StatusBadRequest, ErrMsgInvalidColor
	case errors.Is(err, repositories.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status, msg = fiber.StatusGatewayTimeout, ErrMsgTimeout
	}

	return send(c, status, dto.ErrorResponse{Error: msg})
}

func notFound(c fiber.Ctx) error {
	return send(c, fiber.StatusNotFound, dto.ErrorResponse{Error: ErrMsgNoteNotFound})
}

func unauthorized(c fiber.Ctx) error {
	return send(c, fiber.StatusUnauthorized, dto.ErrorResponse{Error: middleware.ErrMsgTokenRequired})
}

func send(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("%s: %w", errSendResponse, err)
	}
	return nil
}
