package service

import (
	"testing"

	"github.com/pizza-nz/print-routing-service/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return NewAuthService(config.Auth{
		Username:     "operator",
		PasswordHash: string(hash),
		JWT:          config.JWT{Secret: "test-secret", ExpiresIn: 1},
	})
}

func TestLoginAndValidateToken(t *testing.T) {
	auth := newAuthFixture(t)

	token, err := auth.Login("operator", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "operator" {
		t.Fatalf("wrong username in claims: %s", claims.Username)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth := newAuthFixture(t)

	if _, err := auth.Login("operator", "wrong"); err == nil {
		t.Fatalf("expected error for wrong password")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	auth := newAuthFixture(t)

	if _, err := auth.Login("nobody", "hunter2"); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	auth := newAuthFixture(t)

	if _, err := auth.ValidateToken("not.a.token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
