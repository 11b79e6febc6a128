package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	sub, err := issuer.ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if sub != "alice" {
		t.Errorf("expected subject alice, got %q", sub)
	}
}

func TestValidateJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenIssuer("one").GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := NewTokenIssuer("two").ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	issued := time.Now().Add(-48 * time.Hour)
	issuer.now = func() time.Time { return issued }
	token, err := issuer.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPasswordHash("hunter3", hash) {
		t.Error("expected wrong password to fail")
	}
}
