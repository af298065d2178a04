package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Константы проверки токена.
const (
	LogAuthMiddleware = "auth middleware"
	LogTokenMissing   = "no access token provided"
	LogTokenRejected  = "access token rejected"

	ErrMsgTokenRequired = "Access token required"
	ErrMsgInvalidToken  = "Invalid token"

	bearerPrefix = "Bearer "
)

// NewAuthMiddleware проверяет заголовок Authorization: Bearer <token>.
// Без токена ответ 401, с недействительным или истекшим токеном 403.
func NewAuthMiddleware(auth api.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := RequestContext(c)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			log.Debug(requestCtx, LogTokenMissing)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrMsgTokenRequired})
		}

		claims, err := auth.Authenticate(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, LogTokenRejected, zap.Error(err))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": ErrMsgInvalidToken})
		}

		c.Locals(claimsKey, claims)
		setRequestContext(c, logger.NewUserIDContext(requestCtx, claims.UserID))
		return c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
