package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRegistered = errors.New("username is already registered")
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("this account has been deactivated")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrRoleNotFound       = errors.New("role not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// ValidationError carries the offending field so controllers can return a
// field-level message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
