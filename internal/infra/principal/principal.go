// Package principal supplies the acting user id threaded into every
// dashboard query. Identity itself is established elsewhere; these
// providers only read it.
package principal

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Static always returns the configured id.
type Static struct {
	ID string
}

// Principal returns the static id, or ErrUnauthorized when none is configured.
func (s Static) Principal(_ context.Context) (string, error) {
	if strings.TrimSpace(s.ID) == "" {
		return "", &domain.ErrUnauthorized{Message: "no principal configured"}
	}
	return s.ID, nil
}

// Token reads the subject of an HS256 token issued by the identity service.
// The token is re-validated on every call so expiry is honored.
type Token struct {
	raw    string
	secret []byte
}

// NewToken creates a provider for raw signed with secret.
func NewToken(raw, secret string) *Token {
	return &Token{raw: strings.TrimSpace(raw), secret: []byte(secret)}
}

// Principal returns the token subject.
func (t *Token) Principal(_ context.Context) (string, error) {
	return SubjectFromToken(t.raw, t.secret)
}

// SubjectFromToken validates raw and returns its "sub" claim.
func SubjectFromToken(raw string, secret []byte) (string, error) {
	if raw == "" {
		return "", &domain.ErrUnauthorized{Message: "missing principal token"}
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", &domain.ErrUnauthorized{Message: fmt.Sprintf("invalid principal token: %v", err)}
	}
	if claims.Subject == "" {
		return "", &domain.ErrUnauthorized{Message: "principal token has no subject"}
	}
	return claims.Subject, nil
}
