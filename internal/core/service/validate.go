package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/otenet/task-manager/internal/core/domain"
)

const minPasswordLength = 7

var validate = validator.New()

func validatePassword(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < minPasswordLength {
		return "", domain.NewValidationError("password", "must be longer than 6 characters")
	}
	if strings.Contains(strings.ToLower(raw), "password") {
		return "", domain.NewValidationError("password", `cannot contain the word "password"`)
	}
	return raw, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", domain.NewValidationError("email", "invalid email address")
	}
	return email, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "is required")
	}
	return name, nil
}

func validateAge(age int) error {
	if age < 0 {
		return domain.NewValidationError("age", "cannot be negative")
	}
	return nil
}

func normalizeDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", domain.NewValidationError("description", "is required")
	}
	return description, nil
}
