package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.GenerateToken("user-1", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("secret", time.Hour)

	other, err := NewTokenService("other", time.Hour).GenerateToken("u", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.Error(t, err, "foreign signature")

	expiredSvc := NewTokenService("secret", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateToken("u", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noSub, err := svc.GenerateToken("", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(noSub)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestNonAdminRole(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("secret", time.Hour)
	token, err := svc.GenerateToken("u", "seller")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}
