// Package health содержит обработчик проверки состояния сервиса.
package health

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/adapters/http/middleware"
	"gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Константы проверки состояния.
const (
	LogHealthCheckFailed = "health check failed"

	StatusOK          = "ok"
	StatusUnavailable = "unavailable"

	ErrMsgDatabaseUnavailable = "Database unavailable"
)

// Handler отвечает на запросы проверки состояния.
type Handler struct {
	checker api.HealthChecker
}

// NewHandler создает обработчик проверки состояния.
func NewHandler(checker api.HealthChecker) *Handler {
	return &Handler{checker: checker}
}

// Health проверяет доступность базы и возвращает состояние пула.
func (h *Handler) Health(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)

	resp := dto.HealthResponse{Status: StatusOK}
	status := fiber.StatusOK

	if err := h.checker.Ping(requestCtx); err != nil {
		logger.Log(requestCtx).Error(requestCtx, LogHealthCheckFailed, zap.Error(err))
		resp.Status = StatusUnavailable
		resp.Error = ErrMsgDatabaseUnavailable
		status = fiber.StatusServiceUnavailable
	}
	resp.Pool = h.checker.Stats()

	if err := c.Status(status).JSON(resp); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
