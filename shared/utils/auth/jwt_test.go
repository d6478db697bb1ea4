package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteflow-backend/shared/config"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	config.LoadConfig()

	userID := uuid.New()
	unitID := uuid.New()

	token, err := GenerateJWT(userID, "user@example.com", "sales", &unitID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "sales", claims.Role)
	assert.Equal(t, unitID.String(), claims.SalesUnitID)
}

func TestGenerateJWTWithoutSalesUnit(t *testing.T) {
	config.LoadConfig()

	token, err := GenerateJWT(uuid.New(), "user@example.com", "admin", nil)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Empty(t, claims.SalesUnitID)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	config.LoadConfig()

	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	config.LoadConfig()

	userID := uuid.New()
	token, err := GenerateRefreshJWT(userID, "user@example.com")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
