package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret")

	userID := uuid.New()
	token, err := GenerateToken(userID, "alice@example.com", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "klipz-api", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	InitJWT("first-secret")
	token, err := GenerateToken(uuid.New(), "bob@example.com", "bob")
	require.NoError(t, err)

	InitJWT("second-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	InitJWT("test-secret")
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestGenerateTokenUninitialized(t *testing.T) {
	jwtSecret = nil
	defer InitJWT("test-secret")

	_, err := GenerateToken(uuid.New(), "x@example.com", "x")
	assert.Error(t, err)
}
