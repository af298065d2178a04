package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// Константы восстановления после паники.
const (
	LogServerPanic       = "server panic"
	LogPanicResponseFail = "failed to send error response after panic"

	ErrMsgServerError = "Server error"
)

// NewRecoveryMiddleware создает новое промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		requestCtx := RequestContext(c)

		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log := logger.Log(requestCtx)
			log.Error(requestCtx, LogServerPanic,
				zap.String("error", fmt.Sprintf("%v", r)),
				zap.String("stack", string(debug.Stack())),
			)

			if sendErr := c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": ErrMsgServerError,
			}); sendErr != nil {
				log.Error(requestCtx, LogPanicResponseFail, zap.Error(sendErr))
			}
			err = nil
		}()

		return c.Next()
	}
}
