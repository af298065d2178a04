package middleware

import (
	"github.com/gofiber/fiber/v3"

	"gonotes/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware присваивает запросу идентификатор. Входящий заголовок сохраняется.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		setRequestContext(c, logger.NewRequestIDContext(RequestContext(c), requestID))
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}
