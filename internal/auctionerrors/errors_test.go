package auctionerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("service: register: %w", Invalid("username", ErrDuplicateUsername))

	require.True(t, errors.Is(err, ErrValidation))
	require.True(t, errors.Is(err, ErrDuplicateUsername))
	require.False(t, errors.Is(err, ErrDuplicateEmail))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, map[string]string{"username": "username already exists"}, verr.FieldMap())
}

func TestInvalidField(t *testing.T) {
	err := InvalidField("end_date", "end date cannot be in the past")

	require.True(t, errors.Is(err, ErrValidation))
	require.Equal(t, "validation failed: end_date: end date cannot be in the past", err.Error())
}

func TestValidationError_Builder(t *testing.T) {
	verr := &ValidationError{}
	require.NoError(t, verr.OrNil())

	verr.Add("email", "enter a valid email address")
	verr.AddCause("confirm_password", ErrPasswordMismatch)
	verr.AddCause("username", ErrDuplicateUsername)

	err := verr.OrNil()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation))
	require.True(t, errors.Is(err, ErrPasswordMismatch))
	require.False(t, errors.Is(err, ErrDuplicateUsername))
	require.Len(t, verr.FieldMap(), 3)
}
