// Package session provides signed session identifiers and the keyed stores
// that hold per-session chat histories.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a client-supplied session id cannot be
// verified. Callers treat it as "start a new session", never as a failure.
var ErrInvalidToken = errors.New("session: invalid token")

// Tokens mints and verifies the opaque session ids handed to clients. The
// id sent over the wire is an HS256-signed token carrying the store key, so
// clients cannot guess or tamper with foreign session keys.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token codec from the configured signing secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Mint creates a fresh session: the returned token goes to the client, the
// returned key addresses the session store.
func (t *Tokens) Mint() (token string, key string, err error) {
	key = uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": key,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("session: sign token: %w", err)
	}
	return token, key, nil
}

// Parse verifies a client-supplied token and extracts the store key.
func (t *Tokens) Parse(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	key, _ := claims["sid"].(string)
	if key == "" {
		return "", ErrInvalidToken
	}
	return key, nil
}
