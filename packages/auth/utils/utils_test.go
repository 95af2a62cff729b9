package utils

import (
	"errors"
	"testing"
	"time"

	"pelada-api/packages/auth/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-secret")

	token, err := GenerateToken(models.User{ID: 42, Email: "pele@pelada.test"})
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "pele@pelada.test" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Sub(time.Now()) > AccessTokenExpiry {
		t.Fatalf("expected expiry within %s", AccessTokenExpiry)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, _ := GenerateToken(models.User{ID: 1, Email: "a@pelada.test"})

	t.Setenv("JWT_SECRET", "second-secret")
	if _, err := ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-secret")

	claims := Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if _, err := ValidateToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("garrincha7")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if hash == "garrincha7" || !CheckPassword("garrincha7", hash) {
		t.Fatalf("expected the hash to verify the password")
	}
	if CheckPassword("garrincha8", hash) {
		t.Fatalf("expected a wrong password to fail")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, _ := GenerateSecureToken()
	b, _ := GenerateSecureToken()
	if len(a) != 64 || a == b {
		t.Fatalf("expected distinct 64 char tokens, got %q and %q", a, b)
	}
}
