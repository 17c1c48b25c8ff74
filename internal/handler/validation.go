package handlers

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/w8990/album/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// NewValidator returns a validator with the "username" and "privacy" tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("privacy", func(fl validator.FieldLevel) bool {
		return models.ValidPrivacy(fl.Field().String())
	})
	return v
}
