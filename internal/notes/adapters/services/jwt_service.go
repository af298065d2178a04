package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"gonotes/internal/notes/domain/services"
	svc "gonotes/internal/notes/ports/services"
	"gonotes/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodGenerateToken = "GenerateToken"
	methodValidateToken = "ValidateToken"
	msgGeneratingToken  = "generating token"
	msgValidatingToken  = "validating token"
	msgTokenGenerated   = "token generated successfully"
	msgTokenValidated   = "token validated successfully"
	msgInvalidToken     = "invalid token format"
	msgTokenExpired     = "token has expired"
	//nolint:gosec
	errSigningToken = "error signing token"
	//nolint:gosec
	errParsingToken       = "error parsing token"
	errCtxGeneratingToken = "generating token"
	errCtxParsingToken    = "parsing token"
	errCtxValidatingToken = "validating token"
)

// DefaultTokenTTL - срок жизни токена, если он не задан.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService.
type ServiceJWT struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string, ttl time.Duration) svc.TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &ServiceJWT{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

// GenerateToken выпускает подписанный HS256 токен с id и именем пользователя.
func (s *ServiceJWT) GenerateToken(ctx context.Context, userID int64, username string) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGenerateToken),
		zap.Int64("userID", userID),
	)
	log.Debug(ctx, msgGeneratingToken)

	if len(s.secretKey) == 0 {
		log.Error(ctx, "empty secret key provided")
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingToken)
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt))
	return tokenString, expiresAt, nil
}

// ValidateToken проверяет подпись и срок действия токена и возвращает его данные.
func (s *ServiceJWT) ValidateToken(ctx context.Context, tokenString string) (*services.TokenClaims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateToken))
	log.Debug(ctx, msgValidatingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredToken)
		}
		log.Debug(ctx, errParsingToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrInvalidToken)
	}

	if claims.UserID <= 0 {
		log.Debug(ctx, "id claim is missing")
		return nil, fmt.Errorf("%s: %w: missing id", errCtxValidatingToken, services.ErrInvalidToken)
	}

	result := &services.TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	log.Debug(ctx, msgTokenValidated, zap.Int64("userID", claims.UserID))
	return result, nil
}
