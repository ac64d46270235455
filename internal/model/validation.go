package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// Credentials are the email/password pair posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks that both fields are present and the email is well formed.
func (c Credentials) Validate() error {
	return validationError(validate.Struct(c))
}

// Registration is the payload posted to the register endpoint. The
// confirmation is checked locally and never sent.
type Registration struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

// Validate checks the registration form.
func (r Registration) Validate() error {
	return validationError(validate.Struct(r))
}

// validationError turns validator output into the messages users see.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if field == "Password" {
			return "Password must be at least 6 characters long"
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
