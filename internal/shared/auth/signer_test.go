package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestSigner(t *testing.T, secret string) *Signer {
	t.Helper()
	s, err := NewSigner(secret, "dev")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func TestSignAndVerify(t *testing.T) {
	s := newTestSigner(t, "test-secret")

	token, err := s.Sign(Claims{Email: "ada@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ada@example.com" || claims.Issuer != Issuer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := newTestSigner(t, "test-secret")

	past := time.Now().Add(-time.Hour)
	token, err := s.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(past),
	}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	token, err := newTestSigner(t, "secret-one").Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := newTestSigner(t, "secret-two").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestSigner(t, "test-secret").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignRequiresSubject(t *testing.T) {
	if _, err := newTestSigner(t, "test-secret").Sign(Claims{}); err == nil {
		t.Fatal("expected error for missing subject")
	}
}

func TestNewSignerSecretRules(t *testing.T) {
	if _, err := NewSigner("", "production"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret in production, got %v", err)
	}
	if _, err := NewSigner("short", "dev"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected short secret to be rejected, got %v", err)
	}
	if _, err := NewSigner("", "dev"); err != nil {
		t.Fatalf("dev should fall back to a default secret: %v", err)
	}
}
