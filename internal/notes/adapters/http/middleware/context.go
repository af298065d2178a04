// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"gonotes/internal/notes/domain/services"
)

const (
	userContextKey = "userContext"
	claimsKey      = "claims"
)

// RequestContext возвращает контекст запроса, собранный промежуточным ПО:
// с идентификатором запроса и сроком выполнения.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(userContextKey).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

func setRequestContext(c fiber.Ctx, ctx context.Context) {
	c.Locals(userContextKey, ctx)
}

// Claims возвращает данные владельца токена, проверенного NewAuthMiddleware.
func Claims(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.TokenClaims)
	return claims, ok && claims != nil
}
