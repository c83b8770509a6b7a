package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "s3cret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(42, "a@b.co", "customer", secret, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken(1, "a@b.co", "customer", secret, -time.Minute)
	require.NoError(t, err)

	wrongKey, err := GenerateToken(1, "a@b.co", "customer", "other", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1}).SignedString([]byte(secret))
	require.NoError(t, err)

	noUser, err := GenerateToken(0, "a@b.co", "customer", secret, time.Hour)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":    expired,
		"wrong key":  wrongKey,
		"alg none":   none,
		"no expiry":  noExpiry,
		"no user id": noUser,
		"garbage":    "not.a.token",
		"empty":      "",
	} {
		_, err := ParseToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
