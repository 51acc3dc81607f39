package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorFillsTemplate(t *testing.T) {
	err := NewError(ErrInvalidCredentials)
	require.NotNil(t, err)

	assert.Equal(t, ErrInvalidCredentials, err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.NotEmpty(t, err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)
	require.NotNil(t, err)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorZeroStatusDefaultsToOK(t *testing.T) {
	// Socket-only errors carry no HTTP status in the map.
	err := NewError(ErrMessageContentEmpty)
	require.NotNil(t, err)

	assert.Equal(t, http.StatusOK, err.Status)
}

func TestCustomErrorImplementsError(t *testing.T) {
	var err error = NewError(ErrRoomNameInvalid)
	assert.Contains(t, err.Error(), "Invalid room name.")
}
