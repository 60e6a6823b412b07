package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := Claims{
		Sub:   "cust-1",
		Email: "asha@example.com",
		Name:  "Asha",
		Iat:   time.Now().Unix(),
		Exp:   time.Now().Add(1 * time.Hour).Unix(),
	}
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Email != claims.Email || parsed.Name != claims.Name {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "cust-1", Exp: time.Now().Add(-time.Minute).Unix()}, "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "s"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignedValue(t *testing.T) {
	signed := SignValue("5b3c0c64-8d4e-4a4e-9f0e-3c2a1d1e0f00", "cookie-secret")
	got, err := VerifyValue(signed, "cookie-secret")
	if err != nil {
		t.Fatalf("VerifyValue failed: %v", err)
	}
	if got != "5b3c0c64-8d4e-4a4e-9f0e-3c2a1d1e0f00" {
		t.Fatalf("unexpected value %q", got)
	}

	tampered := strings.Replace(signed, "5b3c", "aaaa", 1)
	if _, err := VerifyValue(tampered, "cookie-secret"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered value, got %v", err)
	}
	for _, bad := range []string{"", "novalue", ".sig", "value."} {
		if _, err := VerifyValue(bad, "cookie-secret"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
