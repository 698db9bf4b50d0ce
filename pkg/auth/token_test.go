package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nmoreau/gatherly-backend/pkg/config"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestParseIdentityToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret"}
	raw := signToken(t, cfg.Secret, jwt.MapClaims{
		"email":   "Ada@Example.com",
		"name":    "Ada Lovelace",
		"picture": "https://img.example.com/ada.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	identity, err := ParseIdentityToken(cfg, raw)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", identity.Email)
	}
	if identity.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", identity.Name)
	}
	if identity.AvatarURL != "https://img.example.com/ada.png" {
		t.Fatalf("unexpected avatar %q", identity.AvatarURL)
	}
}

func TestParseIdentityTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret"}
	raw := signToken(t, cfg.Secret, jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})

	if _, err := ParseIdentityToken(cfg, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestParseIdentityTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "right"}
	raw := signToken(t, "wrong", jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	if _, err := ParseIdentityToken(cfg, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestParseIdentityTokenRequiresEmail(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret"}
	raw := signToken(t, cfg.Secret, jwt.MapClaims{
		"name": "No Email",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	if _, err := ParseIdentityToken(cfg, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestParseIdentityTokenMissing(t *testing.T) {
	if _, err := ParseIdentityToken(config.JWTConfig{Secret: "x"}, "  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}
