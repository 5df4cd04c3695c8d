package services_test

import (
	"errors"
	"testing"
	"time"

	impl "github.com/identitykit/account-service/internal/application/services"
	"github.com/identitykit/account-service/internal/core/domain/verification"
)

func TestTokenService_GenerateValidateRoundtrip(t *testing.T) {
	svc := impl.NewTokenService("test-secret", time.Hour, nil)

	token, err := svc.Generate("user@example.com", verification.TypeSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
	if claims.Type != verification.TypeSignup {
		t.Fatalf("unexpected type: %s", claims.Type)
	}
	if claims.Nonce == "" {
		t.Fatal("expected nonce to be set")
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Fatal("expected expiry in the future")
	}
}

func TestTokenService_NonceMakesTokensDistinct(t *testing.T) {
	svc := impl.NewTokenService("test-secret", time.Hour, nil)

	a, err := svc.Generate("user@example.com", verification.TypeSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Generate("user@example.com", verification.TypeSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatal("expected two tokens for the same email to differ")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := impl.NewTokenService("test-secret", -time.Minute, nil)

	token, err := svc.Generate("user@example.com", verification.TypeSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Validate(token)
	if !errors.Is(err, verification.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := impl.NewTokenService("secret-a", time.Hour, nil)
	validator := impl.NewTokenService("secret-b", time.Hour, nil)

	token, err := issuer.Generate("user@example.com", verification.TypeSignup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = validator.Validate(token)
	if !errors.Is(err, verification.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := impl.NewTokenService("test-secret", time.Hour, nil)

	_, err := svc.Validate("not-a-token")
	if !errors.Is(err, verification.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
