// Package auth содержит HTTP-обработчики регистрации и входа.
package auth

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/adapters/http/middleware"
	"gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Константы сообщений обработчиков аутентификации.
const (
	LogHandlerRegister = "handling register request"
	LogHandlerLogin    = "handling login request"
	LogRegisterFailed  = "failed to register user"
	LogLoginFailed     = "failed to login user"

	MsgUserCreated = "User created successfully"

	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgCredentialsMissing = "Username and password required"
	ErrMsgCreateUser         = "Failed to create user"
)

// Handler обработчик HTTP-запросов для аутентификации.
type Handler struct {
	authService api.AuthService
}

// NewHandler создает новый экземпляр обработчика аутентификации.
func NewHandler(authService api.AuthService) *Handler {
	return &Handler{authService: authService}
}

// Register обрабатывает запрос на регистрацию пользователя.
func (h *Handler) Register(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Register"))
	log.Debug(requestCtx, LogHandlerRegister)

	req, ok, err := bindCredentials(c)
	if !ok {
		return err
	}

	if _, err := h.authService.Register(requestCtx, req.Username, req.Password); err != nil {
		log.Debug(requestCtx, LogRegisterFailed, zap.Error(err))
		return handleError(c, err, ErrMsgCreateUser)
	}

	return send(c, fiber.StatusCreated, dto.MessageResponse{Message: MsgUserCreated})
}

// Login обрабатывает запрос на вход и возвращает токен доступа.
func (h *Handler) Login(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Login"))
	log.Debug(requestCtx, LogHandlerLogin)

	req, ok, err := bindCredentials(c)
	if !ok {
		return err
	}

	result, err := h.authService.Login(requestCtx, req.Username, req.Password)
	if err != nil {
		log.Debug(requestCtx, LogLoginFailed, zap.Error(err))
		return handleError(c, err, middleware.ErrMsgServerError)
	}

	return send(c, fiber.StatusOK, dto.LoginResponse{
		Token: result.Token,
		User: dto.UserResponse{
			ID:       result.UserID,
			Username: result.Username,
		},
	})
}

// bindCredentials читает тело запроса. При ok == false ответ уже отправлен.
func bindCredentials(c fiber.Ctx) (dto.CredentialsRequest, bool, error) {
	var req dto.CredentialsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return req, false, send(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: ErrMsgInvalidRequestBody})
	}
	if err := dto.Validate(&req); err != nil {
		return req, false, send(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: ErrMsgCredentialsMissing})
	}
	return req, true, nil
}
