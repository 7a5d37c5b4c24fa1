// Package validation содержит правила проверки входных данных.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New возвращает валидатор структур с зарегистрированными правилами проекта.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}
