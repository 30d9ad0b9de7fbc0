package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libriahq/libria/internal/common"
)

func TestIdentityFromTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("user-42", secret, time.Minute)
	require.NoError(t, err)

	id, err := IdentityFromToken(token, secret)
	require.NoError(t, err)

	userID, ok := id.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-42", userID)
	assert.False(t, id.IsAnonymous())
}

func TestIdentityFromTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-42", []byte("right"), time.Minute)
	require.NoError(t, err)

	id, err := IdentityFromToken(token, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.True(t, id.IsAnonymous())
}

func TestIdentityFromTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-42", secret, -time.Minute)
	require.NoError(t, err)

	_, err = IdentityFromToken(token, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIdentityFromTokenGarbage(t *testing.T) {
	_, err := IdentityFromToken("not-a-token", []byte("secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAnonymousIdentity(t *testing.T) {
	id := Anonymous()
	assert.True(t, id.IsAnonymous())
	_, ok := id.UserID()
	assert.False(t, ok)
}
