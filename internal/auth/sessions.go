// Package auth implements user sessions, password hashing, and encryption
// of stored platform credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated user carried inside a session token.
type Identity struct {
	UserID   int64
	Email    string
	Username string
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a Sessions signer. ttl bounds token lifetime.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for id.
func (s *Sessions) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", id.UserID),
		"uid":      id.UserID,
		"email":    id.Email,
		"username": id.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ErrInvalidToken is returned for tokens that fail signature or expiry checks.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Verify parses and validates a token, returning the embedded identity.
func (s *Sessions) Verify(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{UserID: int64(uid)}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["username"].(string); ok {
		id.Username = v
	}
	return id, nil
}
