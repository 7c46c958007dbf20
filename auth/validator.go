package auth

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"grant-desk/errors"
)

// Grant files carry personal and financial details, so account
// passwords sit above the usual 8-character floor. The 72-byte cap
// keeps the encoded hash format stable across clients.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

var validate = validator.New()

// RegisterRequest is the payload checked before an applicant account
// is created. Administrator accounts are provisioned out of band and
// never pass through this validation.
type RegisterRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return CheckPasswordPolicy(req.Password)
}

// CheckPasswordPolicy enforces the account password rules: bounded
// length plus at least one upper, lower, digit and special character.
// Every violation wraps ErrInvalidPassword so callers can map it to a
// single rejection without parsing the reason.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: length must be between %d and %d bytes",
			errors.ErrInvalidPassword, MinPasswordLength, MaxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: upper, lower, digit and special characters are all required",
			errors.ErrInvalidPassword)
	}
	return nil
}
