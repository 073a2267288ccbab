package services

import (
	"errors"

	"taskboard-service/repositories"
)

var (
	ErrNotFound           = repositories.ErrNotFound
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnavailable        = errors.New("storage temporarily unavailable")
)

// ValidationError reports bad client input; its message is safe to return.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
