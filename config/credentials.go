package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Credentials identifies the Azure application registered for the
// Microsoft account sign-in.
type Credentials struct {
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	// RedirectURI is only needed by callers that do not pass one explicitly.
	RedirectURI string `validate:"omitempty,url"`
}

var credentialsValidator = validator.New()

func (c Credentials) Validate() error {
	if err := credentialsValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}
