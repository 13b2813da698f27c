package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned for a missing or wrong password. The two cases
// are never told apart.
var ErrUnauthorized = errors.New("password required or incorrect")

// Guard holds the shared password that unlocks reading, deleting and stats.
type Guard struct {
	secret []byte
}

func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret)}
}

// Check reports whether candidate equals the configured password exactly.
// An empty configured password authorizes nobody.
func (g *Guard) Check(candidate string) bool {
	if len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), g.secret) == 1
}

// Authorize is Check expressed as an error.
func (g *Guard) Authorize(candidate string) error {
	if !g.Check(candidate) {
		return ErrUnauthorized
	}
	return nil
}
