package dto

// CredentialsRequest содержит имя пользователя и пароль для регистрации и входа.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse - публичные данные пользователя.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginResponse содержит токен доступа и пользователя.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MessageResponse - ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - ответ с описанием ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}
