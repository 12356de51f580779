// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("create patient: %w", apperr.Validation("age", "ValidationAgeNumeric"))

	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	var verr *apperr.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "age", verr.Field)
	assert.Contains(t, err.Error(), "invalid age")
}

func TestMessageID(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{apperr.Validation("email", "ValidationEmail"), "ValidationEmail"},
		{fmt.Errorf("x: %w", apperr.ErrNotFound), "ErrorNotFound"},
		{apperr.ErrAlreadyUsed, "ErrorAlreadyUsed"},
		{apperr.ErrForbidden, "ErrorForbidden"},
		{apperr.ErrInternal, "ErrorInternal"},
		{errors.New("boom"), "ErrorInternal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, apperr.MessageID(tt.err))
		})
	}
}
