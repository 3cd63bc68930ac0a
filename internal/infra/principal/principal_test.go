package principal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/principal"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestStatic(t *testing.T) {
	id, err := principal.Static{ID: "2"}.Principal(context.Background())
	if err != nil || id != "2" {
		t.Errorf("expected 2, got %q (%v)", id, err)
	}

	_, err = principal.Static{ID: "  "}.Principal(context.Background())
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestToken_ValidSubject(t *testing.T) {
	raw := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	id, err := principal.NewToken(raw, secret).Principal(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "user-42" {
		t.Errorf("expected user-42, got %q", id)
	}
}

func TestToken_Rejected(t *testing.T) {
	tests := map[string]string{
		"empty": "",
		"expired": sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}),
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "user-42"}),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{}),
		"garbage":      "not.a.token",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := principal.NewToken(raw, secret).Principal(context.Background())
			var unauth *domain.ErrUnauthorized
			if !errors.As(err, &unauth) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
