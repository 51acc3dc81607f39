package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{
		ID:       "7c2d7f3e-1111-2222-3333-444455556666",
		Username: "alice",
		Email:    "alice@example.com",
	}

	tokenString, err := GenerateToken(payload, testSecret, UserIdentityExpiration)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := ParseToken(tokenString, testSecret)
	require.NoError(t, err)

	assert.Equal(t, payload.ID, parsed.ID)
	assert.Equal(t, payload.Username, parsed.Username)
	assert.Equal(t, payload.Email, parsed.Email)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "x", Username: "alice"}, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "some-other-secret")
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "x", Username: "alice"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestParseGarbageToken(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
