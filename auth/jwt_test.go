package auth

import (
	"strings"
	"testing"
	"time"
)

func TestMintAndVerifyRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 0)

	token, err := manager.Mint(42, "user@example.com", "Test User", "https://example.com/p.jpg")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "user@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	// Default expiry is seven days.
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 6*24*time.Hour || remaining > 7*24*time.Hour {
		t.Errorf("expiry in %v, want about 7 days", remaining)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", 0).Mint(1, "a@example.com", "A", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("secret-b", 0).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Hour)
	token, err := manager.Mint(1, "a@example.com", "A", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Verify(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 0)
	for _, garbage := range []string{"", "not-a-token", strings.Repeat("x", 200)} {
		if _, err := manager.Verify(garbage); err == nil {
			t.Errorf("Verify(%q) succeeded, want error", garbage)
		}
	}
}
