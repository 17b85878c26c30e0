package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/pkg/auth"
)

// TestTokenRoundtrip generates a token and validates the claims carried
// back out of it.
func TestTokenRoundtrip(t *testing.T) {
	t.Parallel()

	token, err := auth.GenerateToken(42, "ada", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "storefront", claims.Issuer)
}

// TestValidateTokenRejectsGarbage verifies malformed and tampered tokens
// fail validation.
func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := auth.ValidateToken("not-a-token")
	assert.Error(t, err)

	token, err := auth.GenerateToken(1, "ada", "user")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token + "tampered")
	assert.Error(t, err)
}

// TestPasswordHashing verifies the hash verifies the original password and
// nothing else.
func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	assert.True(t, auth.CheckPassword(hash, "s3cret"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("not-a-hash", "s3cret"))
}
