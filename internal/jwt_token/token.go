// Package jwttoken issues and validates the bearer tokens that attribute
// ledger operations to caller identities.
//
// Tokens are HS256-signed with the subject claim holding the caller
// identity. Identity proofing is out of scope: whoever controls the signing
// key decides which identities exist.
package jwttoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vaxledger/internal/platform/middleware"
	id "vaxledger/pkg/domain"
)

// Manager signs and validates caller tokens.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

// New creates a token manager. ttl bounds the validity of issued tokens.
func New(signingKey string, ttl time.Duration) *Manager {
	return &Manager{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue creates a signed token for the given caller identity.
func (m *Manager) Issue(caller id.Identity, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   caller.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken implements middleware.JWTValidator.
func (m *Manager) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	caller, err := id.ParseIdentity(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject identity: %w", err)
	}
	return &middleware.JWTClaims{CallerID: caller}, nil
}
