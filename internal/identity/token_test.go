package identity

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	ti := NewTokenIssuer("test-secret", "guardian-api", time.Hour)

	raw, claims, err := ti.Issue("guardian-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}

	parsed, err := ti.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Subject != "guardian-1" {
		t.Fatalf("wrong subject %q", parsed.Subject)
	}
	if parsed.ID != claims.ID {
		t.Fatalf("jti mismatch: %q vs %q", parsed.ID, claims.ID)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret", "guardian-api", time.Minute)
	raw, _, err := ti.Issue("guardian-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ti.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := ti.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, _, err := NewTokenIssuer("secret-a", "guardian-api", time.Hour).Issue("guardian-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer("secret-b", "guardian-api", time.Hour)
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	raw, _, err := NewTokenIssuer("test-secret", "someone-else", time.Hour).Issue("guardian-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ti := NewTokenIssuer("test-secret", "guardian-api", time.Hour)
	if _, err := ti.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	ti := NewTokenIssuer("test-secret", "guardian-api", time.Hour)
	if _, err := ti.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
