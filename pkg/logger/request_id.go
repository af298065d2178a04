package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type (
	requestIDKeyType struct{}
	userIDKeyType    struct{}
)

var (
	requestIDKey = requestIDKeyType{}
	userIDKey    = userIDKeyType{}
)

// NewRequestIDContext создает контекст с идентификатором запроса; пустой id генерируется.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID извлекает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// GenerateRequestID генерирует новый идентификатор запроса.
func GenerateRequestID() string {
	return uuid.NewString()
}

// NewUserIDContext помечает контекст владельцем запроса.
// Записи логгера с таким контекстом получают поле user_id.
func NewUserIDContext(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID извлекает идентификатор пользователя из контекста.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithRequestID возвращает копию логгера с полем request_id, если оно есть в контексте.
func (l *Logger) WithRequestID(ctx context.Context) *Logger {
	if id, ok := GetRequestID(ctx); ok {
		return l.With(zap.String(RequestID, id))
	}
	return l
}
