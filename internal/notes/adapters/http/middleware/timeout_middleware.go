package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// NewTimeoutMiddleware ограничивает обработку запроса сроком timeout.
// Срок переходит в хранилище через контекст запроса. Нулевой timeout отключает ограничение.
func NewTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(RequestContext(c), timeout)
		defer cancel()

		setRequestContext(c, ctx)
		return c.Next()
	}
}
