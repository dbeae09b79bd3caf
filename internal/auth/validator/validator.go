// Package validator registers the auth-specific validation rules on the
// shared platform validator.
package validator

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	platformvalidator "vitelis_backend/platform/validator"
)

// PasswordPolicy describes the password requirements for API error messages
const PasswordPolicy = "Password must be at least 8 characters and include: uppercase letter, lowercase letter, number, and special character"

// Register adds the strongpassword tag.
func Register(val *platformvalidator.Validator) error {
	return val.RegisterValidation("strongpassword", validateStrongPassword)
}

// validateStrongPassword requires at least 8 characters with an upper, a
// lower, a digit and a symbol.
func validateStrongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword applies the password policy to a raw string.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
