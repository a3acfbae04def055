package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, jti, err := signToken(secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	parsedJTI, err := parseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, jti, parsedJTI)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := signToken([]byte("secret-a"), time.Minute)
	require.NoError(t, err)

	_, err = parseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := signToken([]byte("s"), -time.Minute)
	require.NoError(t, err)

	_, err = parseToken([]byte("s"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := parseToken([]byte("s"), "not-a-token")
	assert.Error(t, err)
}

func TestMintedTokensAreUnique(t *testing.T) {
	secret := []byte("s")
	a, jtiA, err := signToken(secret, time.Minute)
	require.NoError(t, err)
	b, jtiB, err := signToken(secret, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, jtiA, jtiB)
}
