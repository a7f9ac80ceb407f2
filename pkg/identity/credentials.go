package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials identify a principal to the backend.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// String hides the password.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Email: %q}", c.Email)
}

// Validate checks the input for sign-in.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Join(ErrInvalidInput, formatValidationErrors(err))
	}
	return nil
}

// ValidateForSignUp additionally enforces MinPasswordLength.
func (c Credentials) ValidateForSignUp() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validate.Var(c.Password, fmt.Sprintf("min=%d", MinPasswordLength)); err != nil {
		return errors.Join(ErrInvalidInput,
			fmt.Errorf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateEmail checks a bare email address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.Join(ErrInvalidInput, errors.New("email must be a valid email address"))
	}
	return nil
}
