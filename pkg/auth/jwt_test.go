package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/pkg/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tok, err := auth.GenerateToken("user-1", auth.RoleAdmin)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.True(t, claims.IsAdmin())
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	access, err := auth.GenerateToken("user-1", auth.RoleCustomer)
	require.NoError(t, err)
	refresh, err := auth.GenerateRefreshToken("user-1", auth.RoleCustomer)
	require.NoError(t, err)

	_, err = auth.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	_, err = auth.ValidateToken(refresh)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	claims, err := auth.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := auth.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "secret1"))
	assert.False(t, auth.CheckPassword(hash, "secret2"))
}
