package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h", 2*time.Minute)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidExpiration(t *testing.T) {
	_, err := NewJWTService("secret", "forever", time.Minute)
	assert.Error(t, err)
}

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	claims := Claims{UserID: "user-1", CompanyID: "company-1", Role: RoleAdmin}

	token, expiresIn, err := svc.GenerateSSEToken(claims)
	require.NoError(t, err)
	assert.Equal(t, 120, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
	assert.True(t, got.IsAdmin())
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := newTestService(t)

	token, _, err := svc.GenerateAccessToken(Claims{UserID: "user-1", CompanyID: "company-1"})
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateSSEToken_Expired(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken(Claims{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestValidateSSEToken_WrongSecret(t *testing.T) {
	issuer, err := NewJWTService("other-secret", "1h", time.Minute)
	require.NoError(t, err)
	token, _, err := issuer.GenerateSSEToken(Claims{UserID: "user-1"})
	require.NoError(t, err)

	_, err = newTestService(t).ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService(t)

	token, _, err := svc.GenerateSSEToken(Claims{UserID: "user-1"})
	require.NoError(t, err)

	svc.RevokeToken(token, time.Now().Add(time.Minute))
	assert.True(t, svc.IsTokenRevoked(token))

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestRevokeToken_PrunesExpired(t *testing.T) {
	svc := newTestService(t)

	svc.RevokeToken("old", time.Now().Add(-time.Minute))
	svc.RevokeToken("new", time.Now().Add(time.Minute))

	assert.False(t, svc.IsTokenRevoked("old"))
	assert.True(t, svc.IsTokenRevoked("new"))
}

func TestClaimsFromMap(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"company_id": "c"})
	assert.Error(t, err)

	c, err := ClaimsFromMap(map[string]interface{}{"user_id": "u", "company_id": "c", "role": RoleEmployee})
	require.NoError(t, err)
	assert.False(t, c.IsAdmin())
}
