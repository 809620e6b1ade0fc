// Package auth verifies bearer credentials issued by the storefront and
// admin apps.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("jwt secret is empty")

// JWTVerifier accepts HMAC-signed tokens only.
type JWTVerifier struct {
	secret []byte
	parser *jwtlib.Parser
}

var _ core.CredentialVerifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwtlib.NewParser(jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"})),
	}, nil
}

func (v *JWTVerifier) Verify(token string) (domain.Claims, error) {
	claims := jwtlib.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Claims{}, err
	}
	if !parsed.Valid {
		return domain.Claims{}, errors.New("invalid token")
	}
	return domain.Claims{
		ID:        str(claims, "id"),
		UserID:    str(claims, "userId"),
		Subject:   str(claims, "sub"),
		Type:      str(claims, "type"),
		UserType:  str(claims, "userType"),
		Role:      str(claims, "role"),
		IsAdmin:   flag(claims, "isAdmin"),
		Name:      str(claims, "name"),
		UserName:  str(claims, "userName"),
		Email:     str(claims, "email"),
		UserEmail: str(claims, "userEmail"),
	}, nil
}

func str(c jwtlib.MapClaims, key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func flag(c jwtlib.MapClaims, key string) bool {
	b, _ := c[key].(bool)
	return b
}

// TokenFromRequest returns the credential presented on a handshake: the
// "token" query parameter, else an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
