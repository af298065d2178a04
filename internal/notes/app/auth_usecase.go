// Package app содержит сценарии сервиса заметок: аутентификацию и работу с заметками.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/domain/services"
	"gonotes/internal/notes/ports/api"
	"gonotes/internal/notes/ports/repositories"
	svc "gonotes/internal/notes/ports/services"
	"gonotes/pkg/logger"
)

const (
	methodRegister     = "Register"
	methodLogin        = "Login"
	methodAuthenticate = "Authenticate"

	msgStartRegistration = "starting user registration"
	msgMissingParams     = "username or password is missing or invalid"
	msgUsernameExists    = "user with this username already exists"
	msgUserRegistered    = "user registered successfully"
	msgLoginAttempt      = "login attempt"
	msgLoginUnknownUser  = "login attempt with unknown username"
	msgLoginLongPassword = "login attempt with over-long password"
	msgLoginBadPassword  = "invalid password provided"
	msgUserLoggedIn      = "user logged in successfully"
	msgEmptyToken        = "empty token provided"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrFindingUser       = "error finding user by username"
	msgErrVerifyingPassword = "error verifying password"
	msgErrGenerateToken     = "failed to generate token on login"

	errCtxValidatingParams   = "validating credentials"
	errCtxCheckingUser       = "checking existing user"
	errCtxUsernameRegistered = "username already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxGeneratingToken    = "generating token"
	errCtxValidatingToken    = "validating token"
)

// AuthUseCase реализует api.AuthService.
type AuthUseCase struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) api.AuthService {
	return &AuthUseCase{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register создает пользователя. Имя пользователя должно быть уникальным.
func (a *AuthUseCase) Register(ctx context.Context, username, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("username", username))
	log.Debug(ctx, msgStartRegistration)

	if err := validateCredentials(username, password); err != nil {
		log.Debug(ctx, msgMissingParams, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingParams, err)
	}

	existing, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgUsernameExists)
		return nil, fmt.Errorf("%s: %w", errCtxUsernameRegistered, entities.ErrUsernameTaken)
	}

	hash, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	user, err := a.userRepo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, entities.ErrUsernameTaken) {
			log.Debug(ctx, msgUsernameExists)
		} else {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.Int64("userID", user.ID))
	return user, nil
}

// Login проверяет пароль и выпускает токен доступа.
func (a *AuthUseCase) Login(ctx context.Context, username, password string) (*services.AuthResult, error) {
	username = strings.TrimSpace(username)
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("username", username))
	log.Debug(ctx, msgLoginAttempt)

	if err := validateCredentials(username, password); err != nil {
		if errors.Is(err, entities.ErrLongPassword) {
			log.Debug(ctx, msgLoginLongPassword)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Debug(ctx, msgMissingParams, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingParams, err)
	}

	user, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginUnknownUser)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	ok, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !ok {
		log.Debug(ctx, msgLoginBadPassword)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.tokenSvc.GenerateToken(ctx, user.ID, user.Username)
	if err != nil {
		log.Error(ctx, msgErrGenerateToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingToken, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.Int64("userID", user.ID))
	return &services.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
	}, nil
}

// Authenticate возвращает данные владельца токена.
func (a *AuthUseCase) Authenticate(ctx context.Context, token string) (*services.TokenClaims, error) {
	if token == "" {
		logger.Log(ctx).Debug(ctx, msgEmptyToken, zap.String("method", methodAuthenticate))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrInvalidToken)
	}

	claims, err := a.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, err)
	}
	return claims, nil
}

func validateCredentials(username, password string) error {
	switch {
	case username == "":
		return errors.Join(services.ErrInvalidParams, entities.ErrEmptyUsername)
	case password == "":
		return errors.Join(services.ErrInvalidParams, entities.ErrEmptyPassword)
	case len(password) > entities.MaxPasswordBytes:
		return errors.Join(services.ErrInvalidParams, entities.ErrLongPassword)
	}
	return nil
}
