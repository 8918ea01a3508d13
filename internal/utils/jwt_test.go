package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	const secret = "test-secret"
	tok, err := NewAccessToken(secret, 7, "ADMIN", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
}

func TestHashRefreshRawDeterministic(t *testing.T) {
	assert.Equal(t, HashRefreshRaw("abc"), HashRefreshRaw("abc"))
	assert.NotEqual(t, HashRefreshRaw("abc"), HashRefreshRaw("abd"))
	assert.Len(t, HashRefreshRaw("abc"), 64)
}
