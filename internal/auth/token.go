// Package auth provides API token issuance and validation. The daemon runs on
// the user's behalf; tokens keep other local processes from driving it. A
// client holding the shared secret can mint its own tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry is how long issued tokens are valid.
const TokenExpiry = 24 * time.Hour

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid api token")
	ErrTokenExpired = errors.New("api token has expired")
)

// TokenService signs and validates API tokens (HS256 JWTs).
type TokenService struct {
	signingKey []byte
	issuer     string
}

// TokenConfig holds configuration for the token service.
type TokenConfig struct {
	// SigningKey is the shared secret used to sign tokens.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string
}

// NewTokenService creates a new token service.
func NewTokenService(cfg TokenConfig) *TokenService {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "snapwitchd"
	}
	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     issuer,
	}
}

// VerifySecret reports whether secret matches the signing key. Constant-time.
func (s *TokenService) VerifySecret(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), s.signingKey) == 1
}

// Issue creates a new token for the named client.
func (s *TokenService) Issue(client string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenExpiry)

	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   client,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Validate checks a token and returns the client name it was issued to.
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
