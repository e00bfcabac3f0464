// Package token issues and verifies the signed access and refresh tokens used
// by the API. Verification is stateless: a token is valid iff its signature
// checks out against the server secret and its expiry has not passed. The
// token strings persisted on user rows are informational only and are never
// consulted here. Refresh tokens are not rotated on use.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned by Decode for any malformed, tampered, or expired token.
var ErrInvalid = errors.New("token: invalid or expired token")

// Manager signs and verifies JWTs with a shared HMAC secret.
// The subject claim carries the account email.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a Manager. accessTTL applies to access tokens,
// refreshTTL to refresh tokens.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess creates a short-lived access token for the given subject.
func (m *Manager) IssueAccess(subject string) (string, error) {
	return m.issue(subject, m.accessTTL)
}

// IssueRefresh creates a longer-lived refresh token for the given subject.
func (m *Manager) IssueRefresh(subject string) (string, error) {
	return m.issue(subject, m.refreshTTL)
}

func (m *Manager) issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Decode verifies the signature and expiry of a token and returns its subject.
// It returns ErrInvalid for any failure: bad signature, unexpected signing
// method, malformed token, or expired token.
func (m *Manager) Decode(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", ErrInvalid
	}
	if claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
