// Package dto содержит объекты передачи данных HTTP API.
package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMsgValidation - префикс ошибки проверки тела запроса.
const ErrMsgValidation = "request validation failed"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет тело запроса по тегам validate.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgValidation, err)
	}
	return nil
}
