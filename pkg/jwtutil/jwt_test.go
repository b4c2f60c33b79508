package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := util.GenerateToken("user-1", "ana@example.com", "teacher")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "teacher" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsOtherKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "key-b", ExpirationHours: 1})

	token, err := issuer.GenerateToken("user-1", "a@example.com", "parent")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	util.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	token, err := util.GenerateToken("user-1", "a@example.com", "parent")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := util.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestValidateRejectsMissingIdentity(t *testing.T) {
	key := []byte("test-key")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	if _, err := util.ValidateToken(signed); err == nil {
		t.Fatalf("expected token without user id to fail")
	}
}

func TestMissingConfig(t *testing.T) {
	util := NewJWTUtil(nil)
	if _, err := util.GenerateToken("u", "e", "parent"); err == nil {
		t.Fatalf("expected error without config")
	}
}
