package config

import (
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Port("PORT", "8080"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	t.Setenv("PORT", "")
	p, err := Port("PORT", "8080")
	if err != nil || p != "8080" {
		t.Fatalf("expected fallback 8080, got %q (%v)", p, err)
	}
}

func TestSecondsAndBool(t *testing.T) {
	t.Setenv("API_TIMEOUT_SECONDS", "-3")
	if got := Seconds("API_TIMEOUT_SECONDS", 15*time.Second); got != 15*time.Second {
		t.Fatalf("expected fallback for negative value, got %s", got)
	}
	t.Setenv("API_TIMEOUT_SECONDS", "4")
	if got := Seconds("API_TIMEOUT_SECONDS", 15*time.Second); got != 4*time.Second {
		t.Fatalf("expected 4s, got %s", got)
	}

	t.Setenv("COOKIE_SECURE", "yes")
	if !Bool("COOKIE_SECURE", false) {
		t.Fatal("expected yes to be truthy")
	}
	t.Setenv("COOKIE_SECURE", "maybe")
	if Bool("COOKIE_SECURE", false) {
		t.Fatal("expected fallback for unrecognised value")
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("DATABASE_URL", "  ")
	if _, err := RequiredString("DATABASE_URL"); err == nil {
		t.Fatal("expected error for blank value")
	}
}
