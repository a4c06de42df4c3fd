package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipehire/internal/common"
	"swipehire/internal/domain/session"
)

func TestGenerateAndSession(t *testing.T) {
	provider := NewJWTProvider("secret")
	sess := session.Session{ActorID: "dev-1", Role: session.RoleDeveloper}

	token, expiresAt, err := provider.Generate(sess, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, err := provider.Session(token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestParseRejectsWrongSecretAndExpired(t *testing.T) {
	sess := session.Session{ActorID: "dev-1", Role: session.RoleDeveloper}
	token, _, err := NewJWTProvider("other").Generate(sess, time.Hour)
	require.NoError(t, err)
	_, err = NewJWTProvider("secret").Parse(token)
	assert.Error(t, err)

	expired, _, err := NewJWTProvider("secret").Generate(sess, -time.Minute)
	require.NoError(t, err)
	_, err = NewJWTProvider("secret").Parse(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "dev-1", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}, Role: "developer"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTProvider("secret").Parse(token)
	assert.Error(t, err)
}

func TestSessionRejectsBadRole(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(session.Session{ActorID: "dev-1", Role: "admin"}, time.Hour)
	require.NoError(t, err)
	_, err = provider.Session(token)
	assert.True(t, common.Is(err, common.CodeValidation))
}
