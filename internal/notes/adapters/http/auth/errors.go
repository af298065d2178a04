package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/domain/services"
	"gonotes/internal/notes/ports/repositories"
)

// Сообщения об ошибках для клиента.
const (
	ErrMsgUsernameTaken      = "Username already exists"
	ErrMsgPasswordTooLong    = "Password must be at most 72 bytes"
	ErrMsgInvalidCredentials = "Invalid credentials"
	ErrMsgTimeout            = "Request timed out"

	errSendResponse = "error sending response"
)

// handleError переводит ошибку сценария в HTTP-ответ; fallback уходит клиенту с кодом 500.
func handleError(c fiber.Ctx, err error, fallback string) error {
	status, msg := fiber.StatusInternalServerError, fallback

	switch {
	case errors.Is(err, entities.ErrLongPassword):
		status, msg = fiber.StatusBadRequest, ErrMsgPasswordTooLong
	case errors.Is(err, services.ErrInvalidParams):
		status, msg = fiber.StatusBadRequest, ErrMsgCredentialsMissing
	case errors.Is(err, entities.ErrUsernameTaken):
		status, msg = fiber.StatusBadRequest, ErrMsgUsernameTaken
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, ErrMsgInvalidCredentials
	case errors.Is(err, repositories.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status, msg = fiber.StatusGatewayTimeout, ErrMsgTimeout
	}

	return send(c, status, dto.ErrorResponse{Error: msg})
}

func send(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("%s: %w", errSendResponse, err)
	}
	return nil
}
