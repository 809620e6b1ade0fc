package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/Support/internal/domain"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

func sign(t *testing.T, secret string, claims jwtlib.MapClaims) string {
	t.Helper()
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestNewJWTVerifierRequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestVerifyMapsClaims(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	tok := sign(t, testSecret, jwtlib.MapClaims{
		"id":      "64f0c0ffee",
		"name":    "Dana",
		"email":   "dana@shop.test",
		"isAdmin": true,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee", claims.ID)
	assert.True(t, claims.IsAdmin)

	ident, ok := claims.Identity()
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, ident.Role)
	assert.Equal(t, "Dana", ident.DisplayName)
}

func TestVerifyNumericUserID(t *testing.T) {
	v, _ := NewJWTVerifier(testSecret)
	claims, err := v.Verify(sign(t, testSecret, jwtlib.MapClaims{"userId": 42, "type": "customer"}))
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "customer", claims.Type)
}

func TestVerifyRejects(t *testing.T) {
	v, _ := NewJWTVerifier(testSecret)

	_, err := v.Verify(sign(t, "other", jwtlib.MapClaims{"id": "u1"}))
	assert.Error(t, err, "wrong secret")

	_, err = v.Verify(sign(t, testSecret, jwtlib.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Minute).Unix()}))
	assert.ErrorIs(t, err, jwtlib.ErrTokenExpired)

	_, err = v.Verify("not-a-token")
	assert.Error(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"id": "u1"}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(none)
	assert.Error(t, err, "alg none")
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws/support?token=abc", nil)
	assert.Equal(t, "abc", TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/api/ws/support", nil)
	r.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/api/ws/support", nil)
	r.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, TokenFromRequest(r))
}
