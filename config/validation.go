package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines the settings an environment must provide
type ConfigRequirements struct {
	RequireDBPassword bool
	RequireSMTP       bool
	MinSecretLength   int
}

var (
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			RequireDBPassword: true,
		},
		Production: {
			RequireDBPassword: true,
			RequireSMTP:       true,
			MinSecretLength:   32,
		},
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q check", fe.Tag()),
			}.Error())
		}
	}

	if reqs.RequireDBPassword && cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		problems = append(problems, ValidationError{Field: "DBPassword", Message: "db_password is required"}.Error())
	}
	if reqs.RequireSMTP && cfg.SMTPHost == "" {
		problems = append(problems, ValidationError{Field: "SMTPHost", Message: "smtp_host is required"}.Error())
	}
	if reqs.MinSecretLength > 0 && len(cfg.JWTSecret) < reqs.MinSecretLength {
		problems = append(problems, ValidationError{
			Field:   "JWTSecret",
			Message: fmt.Sprintf("must be at least %d characters", reqs.MinSecretLength),
		}.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}

	return nil
}
