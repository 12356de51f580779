// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the error kinds shared by services and handlers.
// Handlers translate them into a redirect with a flash message.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrForbidden   = errors.New("forbidden")
	ErrInternal    = errors.New("internal error")
)

// ValidationError reports an invalid form field. MessageID is the
// translation key shown to the user.
type ValidationError struct {
	Field     string
	MessageID string
}

// Validation creates a ValidationError.
func Validation(field, messageID string) *ValidationError {
	return &ValidationError{Field: field, MessageID: messageID}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.MessageID)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MessageID returns the translation key for err. Validation errors carry
// their own key, the other kinds map to a fixed one.
func MessageID(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.MessageID
	case errors.Is(err, ErrNotFound):
		return "ErrorNotFound"
	case errors.Is(err, ErrAlreadyUsed):
		return "ErrorAlreadyUsed"
	case errors.Is(err, ErrForbidden):
		return "ErrorForbidden"
	default:
		return "ErrorInternal"
	}
}
