package utils_test

import (
	"errors"
	"testing"

	"github.com/identitykit/account-service/internal/utils"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Passw0rd!", nil},
		{"too short", "P0w!", utils.ErrPasswordTooShort},
		{"no letter", "12345678!", utils.ErrPasswordNoLetter},
		{"no digit", "Password!", utils.ErrPasswordNoDigit},
		{"no special", "Password1", utils.ErrPasswordNoSpecialChar},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := utils.ValidatePasswordStrength(tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBcryptHasher_Roundtrip(t *testing.T) {
	hasher := utils.NewBcryptHasher()

	hash, err := hasher.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "Passw0rd!" {
		t.Fatal("expected hash to differ from password")
	}

	if err := hasher.Compare(hash, "Passw0rd!"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := hasher.Compare(hash, "wrong-password"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
