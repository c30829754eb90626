package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsComparesCode(t *testing.T) {
	err := DuplicateEmail("a@example.com")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "a@example.com", err.Email)

	wrapped := fmt.Errorf("signup: %w", err)
	assert.ErrorIs(t, wrapped, ErrEmailAlreadyExists)
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("x: %w", ErrAccountSuspended))
	require.True(t, ok)
	assert.Equal(t, CodeAccountSuspended, code)

	_, ok = CodeOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestValidation(t *testing.T) {
	err := Validation("nickname", "required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "nickname", err.Field)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "nickname")
}

func TestParseUserStatus(t *testing.T) {
	for _, s := range []string{"active", "inactive", "suspended"} {
		st, err := ParseUserStatus(s)
		require.NoError(t, err)
		assert.True(t, st.Valid())
	}

	_, err := ParseUserStatus("ACTIVE")
	assert.Error(t, err)
	_, err = ParseUserStatus("deleted")
	assert.Error(t, err)
	assert.False(t, UserStatus("").Valid())
}
