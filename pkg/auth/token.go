package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nmoreau/gatherly-backend/pkg/config"
)

// Identity is the verified subject decoded from the session token: the
// tuple asserted by the authentication frontend, nothing more.
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
}

type identityClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// ParseIdentityToken verifies an HS256 session token and extracts the
// identity claims. Token issuance is owned by the web frontend.
func ParseIdentityToken(cfg config.JWTConfig, raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	var claims identityClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Identity{}, fmt.Errorf("%w: email claim required", ErrInvalidToken)
	}

	return Identity{
		Email:     email,
		Name:      strings.TrimSpace(claims.Name),
		AvatarURL: claims.Picture,
	}, nil
}
