// Package validation настраивает валидатор входных данных HTTP-обработчиков.
package validation

import (
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/password"
)

// New возвращает валидатор с правилом strongpassword.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return password.IsStrong(fl.Field().String())
	})
	return v
}
